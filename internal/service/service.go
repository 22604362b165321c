package service

import (
	"context"
	"fmt"

	"github.com/ougirez/facilities/internal/pkg/store"
	"github.com/ougirez/facilities/internal/service/aggregation"
	"github.com/ougirez/facilities/internal/service/calculator"
	"github.com/ougirez/facilities/internal/service/facility"
	"github.com/ougirez/facilities/internal/service/ingest"
	"github.com/ougirez/facilities/internal/service/normalizer"
	"github.com/ougirez/facilities/internal/service/registry"
)

// Service bundles the facility services over one store.
type Service struct {
	Registry    *registry.Service
	Normalizer  *normalizer.Service
	Facilities  *facility.Service
	Aggregation *aggregation.Service
	Calculator  *calculator.Service
	Ingest      *ingest.Service
}

// NewService wires the services and loads the persisted schema.
func NewService(ctx context.Context, store store.Store, ingestOpts ingest.Options) (*Service, error) {
	s := &Service{}

	s.Registry = registry.NewRegistryService(store)
	if err := s.Registry.Load(ctx); err != nil {
		return nil, fmt.Errorf("registry.Load: %w", err)
	}

	s.Normalizer = normalizer.NewNormalizerService(store)
	s.Facilities = facility.NewFacilityService(store, s.Registry)
	s.Aggregation = aggregation.NewAggregationService(store, s.Registry)
	s.Calculator = calculator.NewCalculatorService(s.Registry)
	s.Ingest = ingest.NewIngestService(s.Registry, s.Normalizer, s.Facilities, s.Calculator, ingestOpts)

	return s, nil
}

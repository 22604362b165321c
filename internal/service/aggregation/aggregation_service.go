package aggregation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/store"
)

type SchemaProvider interface {
	Schema() *domain.Schema
}

// Service totals a variable over every data point of an LGA, whatever its date.
type Service struct {
	store   store.RecordStore
	schemas SchemaProvider
}

func NewAggregationService(store store.RecordStore, schemas SchemaProvider) *Service {
	return &Service{
		store:   store,
		schemas: schemas,
	}
}

// Sum returns nil for string variables.
func (s *Service) Sum(ctx context.Context, slug, lga string) (*float64, error) {
	total, _, numeric, err := s.total(ctx, slug, lga)
	if err != nil || !numeric {
		return nil, err
	}

	f := total.InexactFloat64()
	return &f, nil
}

// Average returns nil for string variables and 0 when there are no data points.
func (s *Service) Average(ctx context.Context, slug, lga string) (*float64, error) {
	total, count, numeric, err := s.total(ctx, slug, lga)
	if err != nil || !numeric {
		return nil, err
	}

	var f float64
	if count > 0 {
		f = total.Div(decimal.NewFromInt(count)).InexactFloat64()
	}
	return &f, nil
}

func (s *Service) total(ctx context.Context, slug, lga string) (total decimal.Decimal, count int64, numeric bool, err error) {
	variable, ok := s.schemas.Schema().Variable(slug)
	if !ok {
		return decimal.Zero, 0, false, fmt.Errorf("variable %s: %w", slug, constants.ErrVariableNotFound)
	}
	if !variable.DataType.Numeric() {
		return decimal.Zero, 0, false, nil
	}

	records, err := s.store.ListRecords(ctx, store.ListRecordsOpts{VariableSlug: &slug, LGA: &lga})
	if err != nil {
		return decimal.Zero, 0, false, fmt.Errorf("store.ListRecords: %w", err)
	}

	total = decimal.Zero
	for _, r := range records {
		f, ok := r.Value.Numeric()
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(f))
		count++
	}
	return total, count, true, nil
}

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/store/xpgx"
)

var facilityColumns = []string{"facility_id", "lga", "created_at", "updated_at"}

func (s *store) UpsertFacility(ctx context.Context, facility *domain.Facility) (*domain.Facility, error) {
	query := builder().Insert(tableFacilities).
		Columns("facility_id", "lga").
		Values(facility.FacilityID, facility.LGA).
		Suffix(`on conflict (facility_id) do update set lga = excluded.lga, updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, fmt.Errorf("upsert facility, facility_id-%s: %w", facility.FacilityID, err)
	}

	return s.GetFacility(ctx, facility.FacilityID)
}

func (s *store) GetFacility(ctx context.Context, facilityID string) (*domain.Facility, error) {
	query := builder().Select(facilityColumns...).
		From(tableFacilities).
		Where(sq.Eq{"facility_id": facilityID})

	selected, err := xpgx.Getx[domain.Facility](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected, nil
}

func (s *store) ListFacilitiesByLGA(ctx context.Context, lga string) ([]*domain.Facility, error) {
	query := builder().Select(facilityColumns...).
		From(tableFacilities).
		Where(sq.Eq{"lga": lga}).
		OrderBy("facility_id")

	selected, err := xpgx.Selectx[domain.Facility](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected, nil
}

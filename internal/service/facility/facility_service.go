package facility

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/metrics"
	"github.com/ougirez/facilities/internal/pkg/store"
)

// SchemaProvider hands out the current schema snapshot.
type SchemaProvider interface {
	Schema() *domain.Schema
}

type facilityStore interface {
	store.FacilityStore
	store.RecordStore
}

// Service is the record store: typed, dated values per facility and variable.
type Service struct {
	store   facilityStore
	schemas SchemaProvider
}

func NewFacilityService(store facilityStore, schemas SchemaProvider) *Service {
	return &Service{
		store:   store,
		schemas: schemas,
	}
}

func (s *Service) RegisterFacility(ctx context.Context, facilityID, lga string) (*domain.Facility, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facility id is required", constants.ErrBadRequest)
	}

	facility, err := s.store.UpsertFacility(ctx, &domain.Facility{FacilityID: facilityID, LGA: lga})
	if err != nil {
		return nil, fmt.Errorf("store.UpsertFacility: %w", err)
	}
	return facility, nil
}

func (s *Service) GetFacility(ctx context.Context, facilityID string) (*domain.Facility, error) {
	facility, err := s.store.GetFacility(ctx, facilityID)
	if errors.Is(err, constants.ErrDBNotFound) {
		return nil, fmt.Errorf("facility %s: %w", facilityID, constants.ErrFacilityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store.GetFacility: %w", err)
	}
	return facility, nil
}

func (s *Service) ListFacilities(ctx context.Context, lga string) ([]*domain.Facility, error) {
	facilities, err := s.store.ListFacilitiesByLGA(ctx, lga)
	if err != nil {
		return nil, fmt.Errorf("store.ListFacilitiesByLGA: %w", err)
	}
	return facilities, nil
}

func (s *Service) variable(slug string) (domain.Variable, error) {
	v, ok := s.schemas.Schema().Variable(slug)
	if !ok {
		return domain.Variable{}, fmt.Errorf("variable %s: %w", slug, constants.ErrVariableNotFound)
	}
	return v, nil
}

// Write casts raw to the variable's type and upserts it under (facility,
// variable, date). A zero date means today. Nothing is stored when the cast fails.
func (s *Service) Write(ctx context.Context, facilityID, slug string, raw any, date time.Time) (*domain.DataRecord, error) {
	variable, err := s.variable(slug)
	if err != nil {
		return nil, err
	}

	value, err := variable.Cast(raw)
	if err != nil {
		metrics.CastFailures.WithLabelValues(string(variable.DataType)).Inc()
		return nil, fmt.Errorf("variable.Cast, variable-%s: %w", slug, err)
	}

	return s.WriteValue(ctx, facilityID, variable, value, date)
}

// WriteValue stores an already typed value.
func (s *Service) WriteValue(ctx context.Context, facilityID string, variable domain.Variable, value domain.Value, date time.Time) (*domain.DataRecord, error) {
	if value.Type() != variable.DataType {
		return nil, fmt.Errorf("%w: %s value for %s variable %s", constants.ErrCast, value.Type(), variable.DataType, variable.Slug)
	}
	if date.IsZero() {
		date = domain.Today()
	}

	record := &domain.DataRecord{
		FacilityID:   facilityID,
		VariableSlug: variable.Slug,
		Date:         domain.TruncateDate(date),
		Value:        value,
	}
	if err := s.store.UpsertRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("store.UpsertRecord: %w", err)
	}

	metrics.RecordsWritten.WithLabelValues(string(variable.DataType)).Inc()
	logger.Debugf(ctx, "facility %s: %s=%s on %s", facilityID, variable.Slug, value, domain.DateISO(record.Date))
	return record, nil
}

// LatestValue returns the value with the greatest date. Records sharing that
// date are returned in unspecified order. found is false when there are none.
func (s *Service) LatestValue(ctx context.Context, facilityID, slug string) (value domain.Value, found bool, err error) {
	if _, err := s.variable(slug); err != nil {
		return domain.Value{}, false, err
	}

	records, err := s.store.ListRecords(ctx, store.ListRecordsOpts{
		FacilityID:   &facilityID,
		VariableSlug: &slug,
		DateDesc:     true,
		Limit:        1,
	})
	if err != nil {
		return domain.Value{}, false, fmt.Errorf("store.ListRecords: %w", err)
	}
	if len(records) == 0 {
		return domain.Value{}, false, nil
	}
	return records[0].Value, true, nil
}

func (s *Service) AllData(ctx context.Context, facilityID string) (domain.AllData, error) {
	records, err := s.store.ListRecords(ctx, store.ListRecordsOpts{FacilityID: &facilityID})
	if err != nil {
		return nil, fmt.Errorf("store.ListRecords: %w", err)
	}

	data := make(domain.AllData)
	for _, r := range records {
		byDate, ok := data[r.VariableSlug]
		if !ok {
			byDate = make(map[string]domain.Value)
			data[r.VariableSlug] = byDate
		}
		byDate[domain.DateISO(r.Date)] = r.Value
	}
	return data, nil
}

func (s *Service) LatestData(ctx context.Context, facilityID string) (domain.LatestData, error) {
	records, err := s.store.ListRecords(ctx, store.ListRecordsOpts{FacilityID: &facilityID, DateDesc: true})
	if err != nil {
		return nil, fmt.Errorf("store.ListRecords: %w", err)
	}
	data, ok := latest(records)[facilityID]
	if !ok {
		data = make(domain.LatestData)
	}
	return data, nil
}

// LatestDataByLGA is LatestData for every facility of the LGA, read in one query.
func (s *Service) LatestDataByLGA(ctx context.Context, lga string) (map[string]domain.LatestData, error) {
	records, err := s.store.ListRecords(ctx, store.ListRecordsOpts{LGA: &lga, DateDesc: true})
	if err != nil {
		return nil, fmt.Errorf("store.ListRecords: %w", err)
	}
	return latest(records), nil
}

// latest keeps the first value seen per (facility, variable). records must be
// ordered by date descending.
func latest(records []*domain.DataRecord) map[string]domain.LatestData {
	out := make(map[string]domain.LatestData)
	for _, r := range records {
		data, ok := out[r.FacilityID]
		if !ok {
			data = make(domain.LatestData)
			out[r.FacilityID] = data
		}
		if _, seen := data[r.VariableSlug]; !seen {
			data[r.VariableSlug] = r.Value
		}
	}
	return out
}

// DistinctDates returns every date with at least one record, ascending.
func (s *Service) DistinctDates(ctx context.Context, facilityID string) ([]time.Time, error) {
	dates, err := s.store.ListDates(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("store.ListDates: %w", err)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// Sector returns the facility's sector value, if one was ever recorded.
func (s *Service) Sector(ctx context.Context, facilityID string) (domain.Value, bool, error) {
	if _, ok := s.schemas.Schema().Variable(constants.SectorVariableSlug); !ok {
		return domain.Value{}, false, nil
	}
	return s.LatestValue(ctx, facilityID, constants.SectorVariableSlug)
}

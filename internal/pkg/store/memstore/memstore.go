// Package memstore keeps facilities, variables, records and key renames in
// process memory. It enforces the same keys and references as the Postgres
// schema and is used for development runs and tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/store"
)

var _ store.Store = (*Store)(nil)

type recordKey struct {
	facilityID   string
	variableSlug string
	date         time.Time
}

type renameKey struct {
	dataSource string
	oldKey     string
}

// recordRow mirrors the typed columns of facility_records.
type recordRow struct {
	floatValue   *float64
	booleanValue *bool
	stringValue  *string
}

type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	facilities map[string]domain.Facility
	variables  map[string]domain.Variable
	records    map[recordKey]recordRow
	renames    map[renameKey]domain.KeyRename
}

func New() *Store {
	return &Store{
		now:        time.Now,
		facilities: make(map[string]domain.Facility),
		variables:  make(map[string]domain.Variable),
		records:    make(map[recordKey]recordRow),
		renames:    make(map[renameKey]domain.KeyRename),
	}
}

func (s *Store) UpsertVariable(_ context.Context, v *domain.Variable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stored := *v
	if existing, ok := s.variables[v.Slug]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.variables[v.Slug] = stored
	return nil
}

func (s *Store) ListVariables(_ context.Context) ([]*domain.Variable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Variable, 0, len(s.variables))
	for _, v := range s.variables {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *Store) UpsertFacility(_ context.Context, f *domain.Facility) (*domain.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stored := domain.Facility{FacilityID: f.FacilityID, LGA: f.LGA, CreatedAt: now, UpdatedAt: now}
	if existing, ok := s.facilities[f.FacilityID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.facilities[f.FacilityID] = stored
	return &stored, nil
}

func (s *Store) GetFacility(_ context.Context, facilityID string) (*domain.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.facilities[facilityID]
	if !ok {
		return nil, constants.ErrDBNotFound
	}
	return &f, nil
}

func (s *Store) ListFacilitiesByLGA(_ context.Context, lga string) ([]*domain.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Facility, 0)
	for _, f := range s.facilities {
		if f.LGA == lga {
			f := f
			out = append(out, &f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FacilityID < out[j].FacilityID })
	return out, nil
}

// UpsertRecord replaces the row under (facility, variable, date) as one step
// under the write lock, so readers never observe a partial row.
func (s *Store) UpsertRecord(_ context.Context, r *domain.DataRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.facilities[r.FacilityID]; !ok {
		return fmt.Errorf("upsert record, facility_id-%s: %w", r.FacilityID, constants.ErrFacilityNotFound)
	}
	if _, ok := s.variables[r.VariableSlug]; !ok {
		return fmt.Errorf("upsert record, variable-%s: %w", r.VariableSlug, constants.ErrVariableNotFound)
	}

	floatValue, booleanValue, stringValue := r.Value.Columns()
	key := recordKey{facilityID: r.FacilityID, variableSlug: r.VariableSlug, date: domain.TruncateDate(r.Date)}
	s.records[key] = recordRow{floatValue: floatValue, booleanValue: booleanValue, stringValue: stringValue}
	return nil
}

func (s *Store) ListRecords(_ context.Context, opts store.ListRecordsOpts) ([]*domain.DataRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.DataRecord, 0)
	for key, row := range s.records {
		if opts.FacilityID != nil && key.facilityID != *opts.FacilityID {
			continue
		}
		if opts.VariableSlug != nil && key.variableSlug != *opts.VariableSlug {
			continue
		}
		if opts.LGA != nil && s.facilities[key.facilityID].LGA != *opts.LGA {
			continue
		}

		variable := s.variables[key.variableSlug]
		value, err := domain.ValueFromColumns(variable.DataType, row.floatValue, row.booleanValue, row.stringValue)
		if err != nil {
			return nil, fmt.Errorf("decode record, facility_id-%s, variable-%s: %w", key.facilityID, key.variableSlug, err)
		}

		out = append(out, &domain.DataRecord{
			FacilityID:   key.facilityID,
			VariableSlug: key.variableSlug,
			Date:         key.date,
			Value:        value,
		})
	}

	// Map iteration is random; sort on the full key so results are reproducible.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			if opts.DateDesc {
				return a.Date.After(b.Date)
			}
			return a.Date.Before(b.Date)
		}
		if a.FacilityID != b.FacilityID {
			return a.FacilityID < b.FacilityID
		}
		return a.VariableSlug < b.VariableSlug
	})

	if opts.Limit > 0 && uint64(len(out)) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) ListDates(_ context.Context, facilityID string) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[time.Time]struct{})
	dates := make([]time.Time, 0)
	for key := range s.records {
		if key.facilityID != facilityID {
			continue
		}
		if _, ok := seen[key.date]; ok {
			continue
		}
		seen[key.date] = struct{}{}
		dates = append(dates, key.date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (s *Store) UpsertKeyRename(_ context.Context, r *domain.KeyRename) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := renameKey{dataSource: r.DataSource, oldKey: r.OldKey}
	stored := *r
	if existing, ok := s.renames[key]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = s.now()
	}
	s.renames[key] = stored
	return nil
}

func (s *Store) ListKeyRenames(_ context.Context, dataSource string) ([]*domain.KeyRename, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.KeyRename, 0)
	for key, r := range s.renames {
		if key.dataSource == dataSource {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OldKey < out[j].OldKey })
	return out, nil
}

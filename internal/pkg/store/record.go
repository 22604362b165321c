package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/store/xpgx"
)

// recordRow is a facility_records row joined with its variable's declared type.
type recordRow struct {
	FacilityID   string          `db:"facility_id"`
	VariableSlug string          `db:"variable_slug"`
	Date         time.Time       `db:"date"`
	FloatValue   *float64        `db:"float_value"`
	BooleanValue *bool           `db:"boolean_value"`
	StringValue  *string         `db:"string_value"`
	DataType     domain.DataType `db:"data_type"`
}

func (r *recordRow) toDomain() (*domain.DataRecord, error) {
	value, err := domain.ValueFromColumns(r.DataType, r.FloatValue, r.BooleanValue, r.StringValue)
	if err != nil {
		return nil, err
	}
	return &domain.DataRecord{
		FacilityID:   r.FacilityID,
		VariableSlug: r.VariableSlug,
		Date:         r.Date,
		Value:        value,
	}, nil
}

func upsertRecordQuery(record *domain.DataRecord) sq.InsertBuilder {
	floatValue, booleanValue, stringValue := record.Value.Columns()

	return builder().Insert(tableFacilityRecords).
		Columns("facility_id", "variable_slug", "date", "float_value", "boolean_value", "string_value").
		Values(record.FacilityID, record.VariableSlug, record.Date, floatValue, booleanValue, stringValue).
		Suffix(`
on conflict (facility_id, variable_slug, date)
do update
set
	float_value = excluded.float_value,
	boolean_value = excluded.boolean_value,
	string_value = excluded.string_value,
	updated_at = now()`)
}

func (s *store) UpsertRecord(ctx context.Context, record *domain.DataRecord) error {
	if _, err := s.pool.Execx(ctx, upsertRecordQuery(record)); err != nil {
		logger.Errorf(ctx, "upsert record %s/%s: %s", record.FacilityID, record.VariableSlug, err.Error())
		return fmt.Errorf("upsert record, facility_id-%s, variable-%s: %w", record.FacilityID, record.VariableSlug, wrapRecordErr(err))
	}
	return nil
}

func listRecordsQuery(opts ListRecordsOpts) sq.SelectBuilder {
	query := builder().Select(
		"r.facility_id", "r.variable_slug", "r.date",
		"r.float_value", "r.boolean_value", "r.string_value",
		"v.data_type").
		From(tableFacilityRecords + " r").
		Join(tableVariables + " v on v.slug = r.variable_slug")

	if opts.FacilityID != nil {
		query = query.Where(sq.Eq{"r.facility_id": *opts.FacilityID})
	}
	if opts.LGA != nil {
		query = query.Join(tableFacilities + " f on f.facility_id = r.facility_id").
			Where(sq.Eq{"f.lga": *opts.LGA})
	}
	if opts.VariableSlug != nil {
		query = query.Where(sq.Eq{"r.variable_slug": *opts.VariableSlug})
	}
	if opts.DateDesc {
		query = query.OrderBy("r.date desc")
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	return query
}

func (s *store) ListRecords(ctx context.Context, opts ListRecordsOpts) ([]*domain.DataRecord, error) {
	rows, err := xpgx.Selectx[recordRow](ctx, s.pool, listRecordsQuery(opts))
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, wrapErr(err)
	}

	records := make([]*domain.DataRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode record, facility_id-%s, variable-%s: %w", row.FacilityID, row.VariableSlug, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func listDatesQuery(facilityID string) sq.SelectBuilder {
	return builder().Select("date").
		Distinct().
		From(tableFacilityRecords).
		Where(sq.Eq{"facility_id": facilityID}).
		OrderBy("date")
}

func (s *store) ListDates(ctx context.Context, facilityID string) ([]time.Time, error) {
	dates, err := xpgx.SelectScalars[time.Time](ctx, s.pool, listDatesQuery(facilityID))
	if err != nil {
		return nil, wrapErr(err)
	}
	return dates, nil
}

package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squash(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

func ptr[T any](v T) *T { return &v }

func TestUpsertRecordQuery(t *testing.T) {
	date := time.Date(2011, 3, 7, 0, 0, 0, 0, time.UTC)
	record := &domain.DataRecord{
		FacilityID:   "KA-001",
		VariableSlug: "num_students",
		Date:         date,
		Value:        domain.FloatValue(42),
	}

	sql, args, err := upsertRecordQuery(record).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO facility_records (facility_id,variable_slug,date,float_value,boolean_value,string_value) "+
			"VALUES ($1,$2,$3,$4,$5,$6) "+
			"on conflict (facility_id, variable_slug, date) do update set "+
			"float_value = excluded.float_value, boolean_value = excluded.boolean_value, "+
			"string_value = excluded.string_value, updated_at = now()",
		squash(sql))

	require.Len(t, args, 6)
	assert.Equal(t, "KA-001", args[0])
	assert.Equal(t, date, args[2])
	assert.Equal(t, ptr(42.0), args[3])
	assert.Nil(t, args[4])
	assert.Nil(t, args[5])
}

func TestListRecordsQuery(t *testing.T) {
	tests := []struct {
		name     string
		opts     ListRecordsOpts
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "facility latest first",
			opts: ListRecordsOpts{FacilityID: ptr("KA-001"), DateDesc: true},
			wantSQL: "SELECT r.facility_id, r.variable_slug, r.date, r.float_value, r.boolean_value, r.string_value, v.data_type " +
				"FROM facility_records r JOIN variables v on v.slug = r.variable_slug " +
				"WHERE r.facility_id = $1 ORDER BY r.date desc",
			wantArgs: []any{"KA-001"},
		},
		{
			name: "single latest value",
			opts: ListRecordsOpts{FacilityID: ptr("KA-001"), VariableSlug: ptr("num_students"), DateDesc: true, Limit: 1},
			wantSQL: "SELECT r.facility_id, r.variable_slug, r.date, r.float_value, r.boolean_value, r.string_value, v.data_type " +
				"FROM facility_records r JOIN variables v on v.slug = r.variable_slug " +
				"WHERE r.facility_id = $1 AND r.variable_slug = $2 ORDER BY r.date desc LIMIT 1",
			wantArgs: []any{"KA-001", "num_students"},
		},
		{
			name: "lga and variable",
			opts: ListRecordsOpts{LGA: ptr("kaduna_north"), VariableSlug: ptr("num_students")},
			wantSQL: "SELECT r.facility_id, r.variable_slug, r.date, r.float_value, r.boolean_value, r.string_value, v.data_type " +
				"FROM facility_records r JOIN variables v on v.slug = r.variable_slug " +
				"JOIN facilities f on f.facility_id = r.facility_id " +
				"WHERE f.lga = $1 AND r.variable_slug = $2",
			wantArgs: []any{"kaduna_north", "num_students"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := listRecordsQuery(tt.opts).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, squash(sql))
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestListDatesQuery(t *testing.T) {
	sql, args, err := listDatesQuery("KA-001").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT DISTINCT date FROM facility_records WHERE facility_id = $1 ORDER BY date", squash(sql))
	assert.Equal(t, []any{"KA-001"}, args)
}

func TestUpsertVariableQuery(t *testing.T) {
	sql, args, err := upsertVariableQuery(&domain.Variable{
		Slug:     "ratio",
		Name:     "Student teacher ratio",
		DataType: domain.DataTypeFloat,
		Formula:  "a / b",
	}).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(squash(sql), "INSERT INTO variables (slug,name,data_type,description,formula) VALUES ($1,$2,$3,$4,$5) on conflict (slug) do update"))
	assert.Equal(t, []any{"ratio", "Student teacher ratio", "float", "", "a / b"}, args)
}

func TestRecordRowToDomain(t *testing.T) {
	row := recordRow{
		FacilityID:   "KA-001",
		VariableSlug: "has_water",
		BooleanValue: ptr(true),
		FloatValue:   ptr(1.0),
		DataType:     domain.DataTypeBoolean,
	}

	record, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.BooleanValue(true), record.Value)

	row.DataType = "date"
	_, err = row.toDomain()
	assert.ErrorIs(t, err, constants.ErrUnsupportedType)
}

func TestWrapErr(t *testing.T) {
	err := wrapErr(fmt.Errorf("select: %w", pgx.ErrNoRows))
	assert.ErrorIs(t, err, constants.ErrDBNotFound)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	other := errors.New("boom")
	assert.Equal(t, other, wrapErr(other))
}

func TestWrapRecordErr(t *testing.T) {
	facilityErr := &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "facility_records_facility_id_fkey"}
	assert.ErrorIs(t, wrapRecordErr(facilityErr), constants.ErrFacilityNotFound)

	variableErr := &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "facility_records_variable_slug_fkey"}
	assert.ErrorIs(t, wrapRecordErr(variableErr), constants.ErrVariableNotFound)

	uniqueErr := &pgconn.PgError{Code: "23505"}
	assert.Equal(t, error(uniqueErr), wrapRecordErr(uniqueErr))
}

func TestSchemaDDLDeclaresTables(t *testing.T) {
	for _, table := range []string{tableFacilities, tableVariables, tableFacilityRecords, tableKeyRenames} {
		assert.Contains(t, schemaDDL, "create table if not exists "+table+" (")
	}
	assert.Contains(t, schemaDDL, "primary key (facility_id, variable_slug, date)")
	assert.Contains(t, schemaDDL, "primary key (data_source, old_key)")
}

package facility

import (
	"context"
	"testing"
	"time"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/store/memstore"
	"github.com/ougirez/facilities/internal/service/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	d1 = time.Date(2011, time.March, 1, 0, 0, 0, 0, time.UTC)
	d2 = time.Date(2011, time.June, 15, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	registry *registry.Service
	service  *Service
}

func newFixture(t *testing.T, variables ...domain.Variable) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()

	reg := registry.NewRegistryService(st)
	for _, v := range variables {
		_, err := reg.RegisterVariable(ctx, v)
		require.NoError(t, err)
	}

	svc := NewFacilityService(st, reg)
	for _, f := range []struct{ id, lga string }{{"E", "lga1"}, {"F", "lga1"}, {"G", "lga2"}} {
		_, err := svc.RegisterFacility(ctx, f.id, f.lga)
		require.NoError(t, err)
	}
	return &fixture{registry: reg, service: svc}
}

func variable(slug string, t domain.DataType) domain.Variable {
	return domain.Variable{Slug: slug, Name: slug, DataType: t}
}

func TestEndToEndLatestData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, variable("num_students", domain.DataTypeFloat))

	_, err := f.service.Write(ctx, "E", "num_students", "42", d1)
	require.NoError(t, err)

	data, err := f.service.LatestData(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, domain.LatestData{"num_students": domain.FloatValue(42)}, data)

	_, err = f.service.Write(ctx, "E", "num_students", "50", d2)
	require.NoError(t, err)

	data, err = f.service.LatestData(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, domain.LatestData{"num_students": domain.FloatValue(50)}, data)

	all, err := f.service.AllData(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, domain.AllData{"num_students": {
		"2011-03-01": domain.FloatValue(42),
		"2011-06-15": domain.FloatValue(50),
	}}, all)
}

func TestWriteSameKeyOverwrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, variable("has_water", domain.DataTypeBoolean))

	_, err := f.service.Write(ctx, "E", "has_water", "yes", d1)
	require.NoError(t, err)
	_, err = f.service.Write(ctx, "E", "has_water", "no", d1)
	require.NoError(t, err)

	all, err := f.service.AllData(ctx, "E")
	require.NoError(t, err)
	require.Len(t, all["has_water"], 1)
	assert.Equal(t, domain.BooleanValue(false), all["has_water"]["2011-03-01"])
}

func TestWriteCastFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, variable("num_students", domain.DataTypeFloat))

	_, err := f.service.Write(ctx, "E", "num_students", "many", d1)
	require.ErrorIs(t, err, constants.ErrCast)

	var castErr *domain.CastError
	require.ErrorAs(t, err, &castErr)
	assert.Equal(t, domain.DataTypeFloat, castErr.DataType)

	_, found, err := f.service.LatestValue(ctx, "E", "num_students")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWriteUnknownVariableOrFacility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, variable("num_students", domain.DataTypeFloat))

	_, err := f.service.Write(ctx, "E", "num_teachers", 3, d1)
	assert.ErrorIs(t, err, constants.ErrVariableNotFound)

	_, err = f.service.Write(ctx, "nope", "num_students", 3, d1)
	assert.ErrorIs(t, err, constants.ErrFacilityNotFound)
}

func TestWriteDefaultsToToday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, variable("sector", domain.DataTypeString))

	record, err := f.service.Write(ctx, "E", "sector", "health", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, domain.Today(), record.Date)

	dates, err := f.service.DistinctDates(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{domain.Today()}, dates)
}

func TestLatestValue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, variable("num_students", domain.DataTypeFloat))

	_, found, err := f.service.LatestValue(ctx, "E", "num_students")
	require.NoError(t, err)
	assert.False(t, found, "no data points is absent, not an error")

	_, err = f.service.Write(ctx, "E", "num_students", 50, d2)
	require.NoError(t, err)
	_, err = f.service.Write(ctx, "E", "num_students", 42, d1)
	require.NoError(t, err)

	value, found, err := f.service.LatestValue(ctx, "E", "num_students")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 50.0, value.AsFloat())

	_, _, err = f.service.LatestValue(ctx, "E", "unknown")
	assert.ErrorIs(t, err, constants.ErrVariableNotFound)
}

func TestLatestDataByLGA(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		variable("num_students", domain.DataTypeFloat),
		variable("sector", domain.DataTypeString),
	)

	writes := []struct {
		facility, slug string
		raw            any
		date           time.Time
	}{
		{"E", "num_students", 10, d1},
		{"E", "num_students", 20, d2},
		{"E", "sector", "education", d1},
		{"F", "num_students", 5, d1},
		{"G", "num_students", 99, d2},
	}
	for _, w := range writes {
		_, err := f.service.Write(ctx, w.facility, w.slug, w.raw, w.date)
		require.NoError(t, err)
	}

	byFacility, err := f.service.LatestDataByLGA(ctx, "lga1")
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.LatestData{
		"E": {"num_students": domain.FloatValue(20), "sector": domain.TextValue("education")},
		"F": {"num_students": domain.FloatValue(5)},
	}, byFacility)

	dates, err := f.service.DistinctDates(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d1, d2}, dates)
}

func TestSector(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, found, err := f.service.Sector(ctx, "E")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = f.registry.RegisterVariable(ctx, variable(constants.SectorVariableSlug, domain.DataTypeString))
	require.NoError(t, err)
	_, err = f.service.Write(ctx, "E", constants.SectorVariableSlug, "health", d1)
	require.NoError(t, err)

	sector, found, err := f.service.Sector(ctx, "E")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "health", sector.AsText())
}

func TestGetFacility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	facility, err := f.service.GetFacility(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, "lga2", facility.LGA)

	_, err = f.service.GetFacility(ctx, "missing")
	assert.ErrorIs(t, err, constants.ErrFacilityNotFound)

	inLGA, err := f.service.ListFacilities(ctx, "lga1")
	require.NoError(t, err)
	require.Len(t, inLGA, 2)
	assert.Equal(t, "E", inLGA[0].FacilityID)
	assert.Equal(t, "F", inLGA[1].FacilityID)
}

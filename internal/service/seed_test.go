package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/facilities/internal/domain/dto"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/store/memstore"
	"github.com/ougirez/facilities/internal/service/ingest"
)

const seedYAML = `
variables:
  - slug: num_students_total
    name: Total students
    data_type: float
  - slug: num_tchrs_total
    data_type: float
calculated_variables:
  - slug: students_per_two_teachers
    formula: student_teacher_ratio * 2
  - slug: student_teacher_ratio
    formula: d['num_students_total'] / d['num_tchrs_total']
key_renames:
  - data_source: education_survey
    old_key: students
    new_key: num_students_total
`

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	svc, err := NewService(ctx, st, ingest.Options{Workers: 1})
	require.NoError(t, err)

	seed, err := LoadSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.NoError(t, svc.ApplySeed(ctx, seed))
	// Seeding is idempotent.
	require.NoError(t, svc.ApplySeed(ctx, seed))

	calc := svc.Registry.Schema().Calculated()
	require.Len(t, calc, 2)
	assert.Equal(t, "student_teacher_ratio", calc[0].Slug)

	rules, err := svc.Normalizer.RulesFor(ctx, "education_survey")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"students": "num_students_total"}, rules)

	// A fresh service over the same store sees the seeded schema.
	reloaded, err := NewService(ctx, st, ingest.Options{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Registry.Schema().Len())

	result, err := reloaded.Ingest.CreateFacilityFromRecord(ctx, dto.RawRecord{
		"_data_source":    "education_survey",
		"_facility_id":    "s1",
		"students":        "40",
		"num_tchrs_total": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.Calculated["students_per_two_teachers"].AsFloat())
}

func TestApplySeedRejectsUnresolvable(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(ctx, memstore.New(), ingest.Options{})
	require.NoError(t, err)

	seed, err := LoadSeed(strings.NewReader(`
calculated_variables:
  - slug: a
    formula: b + 1
`))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ApplySeed(ctx, seed), constants.ErrInvalidFormula)
}

func TestLoadSeedUnknownField(t *testing.T) {
	_, err := LoadSeed(strings.NewReader("variabels: []\n"))
	assert.Error(t, err)
}

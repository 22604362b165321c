package domain

import (
	"testing"

	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawVariable(slug string, t DataType) Variable {
	return Variable{Slug: slug, Name: slug, DataType: t}
}

func calculated(slug, f string) Variable {
	return Variable{Slug: slug, Name: slug, DataType: DataTypeFloat, Formula: f}
}

func TestNewSchemaOrdersCalculated(t *testing.T) {
	s, err := NewSchema(3, []Variable{
		rawVariable("num_students_total", DataTypeFloat),
		rawVariable("num_tchrs_total", DataTypeFloat),
		calculated("students_per_class", "student_teacher_ratio * 2"),
		calculated("student_teacher_ratio", "d['num_students_total'] / d['num_tchrs_total']"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), s.Version())
	assert.Equal(t, 4, s.Len())

	calc := s.Calculated()
	require.Len(t, calc, 2)
	assert.Equal(t, "student_teacher_ratio", calc[0].Slug)
	assert.Equal(t, "students_per_class", calc[1].Slug)

	slugs := make([]string, 0, 4)
	for _, v := range s.Variables() {
		slugs = append(slugs, v.Slug)
	}
	assert.Equal(t, []string{"num_students_total", "num_tchrs_total", "student_teacher_ratio", "students_per_class"}, slugs)
}

func TestNewSchemaRejects(t *testing.T) {
	tests := []struct {
		name      string
		variables []Variable
		want      error
	}{
		{
			name:      "unsupported type",
			variables: []Variable{rawVariable("x", "integer")},
			want:      constants.ErrUnsupportedType,
		},
		{
			name:      "bad formula",
			variables: []Variable{rawVariable("a", DataTypeFloat), calculated("b", "__import__('os')")},
			want:      constants.ErrInvalidFormula,
		},
		{
			name:      "unknown reference",
			variables: []Variable{calculated("b", "a + 1")},
			want:      constants.ErrInvalidFormula,
		},
		{
			name:      "cycle",
			variables: []Variable{calculated("a", "b + 1"), calculated("b", "a + 1")},
			want:      constants.ErrInvalidFormula,
		},
		{
			name:      "self reference",
			variables: []Variable{calculated("a", "a + 1")},
			want:      constants.ErrInvalidFormula,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(1, tt.variables)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSchemaWithIsCopyOnWrite(t *testing.T) {
	base, err := NewSchema(1, []Variable{rawVariable("a", DataTypeFloat)})
	require.NoError(t, err)

	next, err := base.With(rawVariable("b", DataTypeBoolean))
	require.NoError(t, err)

	_, ok := base.Variable("b")
	assert.False(t, ok)
	assert.Equal(t, int64(2), next.Version())

	v, ok := next.Variable("b")
	require.True(t, ok)
	assert.Equal(t, DataTypeBoolean, v.DataType)

	replaced, err := next.With(rawVariable("a", DataTypeString))
	require.NoError(t, err)
	v, _ = replaced.Variable("a")
	assert.Equal(t, DataTypeString, v.DataType)
	assert.Equal(t, 2, replaced.Len())
}

func TestVariableToDict(t *testing.T) {
	v := calculated("ratio", "a / b")
	v.Description = "students per teacher"

	assert.Equal(t, map[string]any{
		"name":        "ratio",
		"slug":        "ratio",
		"data_type":   "float",
		"description": "students per teacher",
		"formula":     "a / b",
	}, v.ToDict())

	assert.NotContains(t, rawVariable("a", DataTypeFloat).ToDict(), "formula")
}

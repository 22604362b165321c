package registry

import (
	"context"
	"testing"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterVariable(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc := NewRegistryService(st)

	before := svc.Schema()

	v, err := svc.RegisterVariable(ctx, domain.Variable{Slug: "num_students", DataType: domain.DataTypeFloat})
	require.NoError(t, err)
	assert.Equal(t, "num_students", v.Name)

	after := svc.Schema()
	assert.Greater(t, after.Version(), before.Version())
	_, ok := before.Variable("num_students")
	assert.False(t, ok, "old snapshot must not change")

	stored, err := st.ListVariables(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.DataTypeFloat, stored[0].DataType)
}

func TestRegisterVariableRejects(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(memstore.New())

	_, err := svc.RegisterVariable(ctx, domain.Variable{Slug: "x", DataType: "integer"})
	assert.ErrorIs(t, err, constants.ErrUnsupportedType)

	_, err = svc.RegisterVariable(ctx, domain.Variable{Slug: "has space", DataType: domain.DataTypeFloat})
	assert.ErrorIs(t, err, constants.ErrBadRequest)

	_, err = svc.RegisterVariable(ctx, domain.Variable{Slug: "x", DataType: domain.DataTypeFloat, Formula: "1"})
	assert.ErrorIs(t, err, constants.ErrBadRequest)

	_, err = svc.RegisterVariable(ctx, domain.Variable{Slug: "x", DataType: domain.DataTypeFloat})
	require.NoError(t, err)
	_, err = svc.RegisterVariable(ctx, domain.Variable{Slug: "x", DataType: domain.DataTypeString})
	assert.ErrorIs(t, err, constants.ErrDuplicateVariable)

	_, err = svc.RegisterVariable(ctx, domain.Variable{Slug: "x", DataType: domain.DataTypeFloat, Description: "updated"})
	require.NoError(t, err)
	v, _ := svc.Schema().Variable("x")
	assert.Equal(t, "updated", v.Description)
}

func TestRegisterVariableKeepsKind(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(memstore.New())

	_, err := svc.RegisterVariable(ctx, domain.Variable{Slug: "a", DataType: domain.DataTypeFloat})
	require.NoError(t, err)
	_, err = svc.RegisterCalculatedVariable(ctx, domain.Variable{Slug: "double_a", Formula: "a * 2"})
	require.NoError(t, err)

	_, err = svc.RegisterVariable(ctx, domain.Variable{Slug: "double_a", DataType: domain.DataTypeFloat})
	assert.ErrorIs(t, err, constants.ErrDuplicateVariable)
	_, err = svc.RegisterCalculatedVariable(ctx, domain.Variable{Slug: "a", Formula: "double_a / 2"})
	assert.ErrorIs(t, err, constants.ErrDuplicateVariable)

	v, ok := svc.Schema().Variable("double_a")
	require.True(t, ok)
	assert.Equal(t, "a * 2", v.Formula)

	_, err = svc.RegisterCalculatedVariable(ctx, domain.Variable{Slug: "double_a", Formula: "a + a"})
	require.NoError(t, err)
}

func TestRegisterCalculatedVariable(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(memstore.New())

	_, err := svc.RegisterCalculatedVariable(ctx, domain.Variable{Slug: "ratio", Formula: "num_students / num_teachers"})
	assert.ErrorIs(t, err, constants.ErrInvalidFormula, "references must exist at registration")

	for _, slug := range []string{"num_students", "num_teachers"} {
		_, err = svc.RegisterVariable(ctx, domain.Variable{Slug: slug, DataType: domain.DataTypeFloat})
		require.NoError(t, err)
	}

	v, err := svc.RegisterCalculatedVariable(ctx, domain.Variable{Slug: "ratio", Formula: "num_students / num_teachers"})
	require.NoError(t, err)
	assert.Equal(t, domain.DataTypeFloat, v.DataType)
	assert.True(t, v.IsCalculated())

	_, err = svc.RegisterCalculatedVariable(ctx, domain.Variable{Slug: "evil", Formula: "__import__('os').system('rm')"})
	assert.ErrorIs(t, err, constants.ErrInvalidFormula)

	_, err = svc.RegisterCalculatedVariable(ctx, domain.Variable{Slug: "empty"})
	assert.ErrorIs(t, err, constants.ErrInvalidFormula)

	calc := svc.Schema().Calculated()
	require.Len(t, calc, 1)
	assert.Equal(t, []string{"num_students", "num_teachers"}, calc[0].Program.References())
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.UpsertVariable(ctx, &domain.Variable{Slug: "a", Name: "a", DataType: domain.DataTypeFloat}))
	require.NoError(t, st.UpsertVariable(ctx, &domain.Variable{Slug: "b", Name: "b", DataType: domain.DataTypeFloat, Formula: "a * 2"}))

	svc := NewRegistryService(st)
	require.NoError(t, svc.Load(ctx))

	assert.Equal(t, 2, svc.Schema().Len())
	assert.Len(t, svc.Schema().Calculated(), 1)

	got, err := svc.Cast(domain.DataTypeBoolean, "Yes")
	require.NoError(t, err)
	assert.True(t, got.AsBool())
}

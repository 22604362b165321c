package domain

import (
	"encoding/json"
	"testing"

	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastFloat(t *testing.T) {
	tests := []struct {
		raw  any
		want float64
	}{
		{raw: "42", want: 42},
		{raw: " 3.5 ", want: 3.5},
		{raw: "-1e3", want: -1000},
		{raw: 7, want: 7},
		{raw: int64(9), want: 9},
		{raw: float32(0.5), want: 0.5},
		{raw: 2.25, want: 2.25},
		{raw: true, want: 1},
		{raw: json.Number("12"), want: 12},
	}

	for _, tt := range tests {
		got, err := Cast(DataTypeFloat, tt.raw)
		require.NoError(t, err, "raw %v", tt.raw)
		assert.Equal(t, DataTypeFloat, got.Type())
		assert.Equal(t, tt.want, got.AsFloat(), "raw %v", tt.raw)
	}
}

func TestCastFloatRejectsNonNumeric(t *testing.T) {
	for _, raw := range []any{"abc", "", "12abc", nil, []int{1}, "NaN", "inf"} {
		_, err := Cast(DataTypeFloat, raw)
		require.Error(t, err, "raw %v", raw)

		var castErr *CastError
		assert.ErrorAs(t, err, &castErr)
		assert.ErrorIs(t, err, constants.ErrCast)
	}
}

func TestCastBoolean(t *testing.T) {
	for _, raw := range []any{"Yes", "TRUE", "1", "y", "t", "it's true", 1, 2.5, true, []string{"x"}} {
		got, err := Cast(DataTypeBoolean, raw)
		require.NoError(t, err)
		assert.True(t, got.AsBool(), "raw %v", raw)
	}
	for _, raw := range []any{"no", "0", "", "NO", 0, 0.0, false, nil, []string{}, map[string]int{}} {
		got, err := Cast(DataTypeBoolean, raw)
		require.NoError(t, err)
		assert.False(t, got.AsBool(), "raw %v", raw)
	}
}

func TestCastString(t *testing.T) {
	tests := []struct {
		raw  any
		want string
	}{
		{raw: "primary", want: "primary"},
		{raw: 42.0, want: "42"},
		{raw: 1.5, want: "1.5"},
		{raw: 3, want: "3"},
		{raw: true, want: "true"},
		{raw: nil, want: ""},
	}

	for _, tt := range tests {
		got, err := Cast(DataTypeString, tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.AsText())
	}
}

func TestCastUnsupportedType(t *testing.T) {
	_, err := Cast("date", "2024-01-01")

	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, DataType("date"), ute.DataType)
	assert.ErrorIs(t, err, constants.ErrUnsupportedType)

	v := Variable{Slug: "opened", Name: "Opened", DataType: "date"}
	_, err = v.Cast("2024-01-01")
	require.ErrorAs(t, err, &ute)
	assert.Contains(t, err.Error(), `"slug":"opened"`)
}

func TestValueColumnsRoundTrip(t *testing.T) {
	for _, v := range []Value{FloatValue(1.5), BooleanValue(true), TextValue("x")} {
		f, b, s := v.Columns()
		got, err := ValueFromColumns(v.Type(), f, b, s)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	got, err := ValueFromColumns(DataTypeFloat, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, got.IsAbsent())

	_, err = ValueFromColumns("date", nil, nil, nil)
	assert.ErrorIs(t, err, constants.ErrUnsupportedType)
}

func TestValueNumericAndJSON(t *testing.T) {
	n, ok := BooleanValue(true).Numeric()
	assert.True(t, ok)
	assert.Equal(t, 1.0, n)

	_, ok = TextValue("a").Numeric()
	assert.False(t, ok)

	b, err := json.Marshal(map[string]Value{"a": FloatValue(42), "b": TextValue("x"), "c": {}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":42,"b":"x","c":null}`, string(b))
}

func TestDataRecordDateString(t *testing.T) {
	assert.Equal(t, "No date", DataRecord{}.DateString())

	d, err := ParseDate("2011-03-07")
	require.NoError(t, err)
	assert.Equal(t, "03/07/11", DataRecord{Date: d}.DateString())
}

package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type DataType string

const (
	DataTypeFloat   DataType = "float"
	DataTypeBoolean DataType = "boolean"
	DataTypeString  DataType = "string"
)

var DataTypes = []DataType{DataTypeFloat, DataTypeBoolean, DataTypeString}

func (t DataType) Valid() bool {
	switch t {
	case DataTypeFloat, DataTypeBoolean, DataTypeString:
		return true
	}
	return false
}

// Numeric reports whether values of this type can be summed.
func (t DataType) Numeric() bool {
	return t == DataTypeFloat || t == DataTypeBoolean
}

// Value is a typed variable value. The zero Value is absent.
type Value struct {
	kind DataType
	f    float64
	b    bool
	s    string
}

func FloatValue(f float64) Value { return Value{kind: DataTypeFloat, f: f} }
func BooleanValue(b bool) Value { return Value{kind: DataTypeBoolean, b: b} }
func TextValue(s string) Value { return Value{kind: DataTypeString, s: s} }
func (v Value) Type() DataType { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == "" }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsBool() bool { return v.b }
func (v Value) AsText() string { return v.s }

// Numeric returns floats as is and booleans as 1/0.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case DataTypeFloat:
		return v.f, true
	case DataTypeBoolean:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Interface returns the underlying float64, bool or string, or nil when absent.
func (v Value) Interface() any {
	switch v.kind {
	case DataTypeFloat:
		return v.f
	case DataTypeBoolean:
		return v.b
	case DataTypeString:
		return v.s
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case DataTypeFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case DataTypeBoolean:
		return strconv.FormatBool(v.b)
	case DataTypeString:
		return v.s
	}
	return "<absent>"
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Columns splits v into the nullable per-type columns records are persisted in.
func (v Value) Columns() (floatValue *float64, booleanValue *bool, stringValue *string) {
	switch v.kind {
	case DataTypeFloat:
		f := v.f
		floatValue = &f
	case DataTypeBoolean:
		b := v.b
		booleanValue = &b
	case DataTypeString:
		s := v.s
		stringValue = &s
	}
	return
}

// ValueFromColumns picks the column selected by t. A NULL column yields an absent value.
func ValueFromColumns(t DataType, floatValue *float64, booleanValue *bool, stringValue *string) (Value, error) {
	switch t {
	case DataTypeFloat:
		if floatValue == nil {
			return Value{}, nil
		}
		return FloatValue(*floatValue), nil
	case DataTypeBoolean:
		if booleanValue == nil {
			return Value{}, nil
		}
		return BooleanValue(*booleanValue), nil
	case DataTypeString:
		if stringValue == nil {
			return Value{}, nil
		}
		return TextValue(*stringValue), nil
	}
	return Value{}, &UnsupportedTypeError{DataType: t}
}

func (v Value) GoString() string {
	return fmt.Sprintf("%s(%s)", v.kind, v)
}

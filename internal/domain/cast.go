package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var truthyPattern = regexp.MustCompile(`(?i)(true|t|yes|y|1)`)

// Cast converts a loosely typed survey value to t. It is a pure function; records
// are cast once, at write time.
func Cast(t DataType, raw any) (Value, error) {
	switch t {
	case DataTypeFloat:
		f, err := castFloat(raw)
		if err != nil {
			return Value{}, &CastError{DataType: t, Raw: raw, Err: err}
		}
		return FloatValue(f), nil
	case DataTypeBoolean:
		return BooleanValue(castBoolean(raw)), nil
	case DataTypeString:
		return TextValue(castString(raw)), nil
	}
	return Value{}, &UnsupportedTypeError{DataType: t}
}

func castFloat(raw any) (float64, error) {
	var f float64
	switch x := raw.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case json.Number:
		return castFloat(string(x))
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", x, err)
		}
		f = parsed
	case nil:
		return 0, fmt.Errorf("no value")
	default:
		return 0, fmt.Errorf("unsupported raw type %T", raw)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", f)
	}
	return f, nil
}

func castBoolean(raw any) bool {
	switch x := raw.(type) {
	case string:
		return truthyPattern.MatchString(x)
	case []byte:
		return truthyPattern.Match(x)
	case json.Number:
		return truthyPattern.MatchString(string(x))
	}
	return truthy(raw)
}

// truthy follows the usual rules: nil, false, zero numbers and empty
// collections are false, everything else is true.
func truthy(raw any) bool {
	if raw == nil {
		return false
	}
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return v.Len() != 0
	case reflect.Pointer, reflect.Interface:
		return !v.IsNil()
	}
	return true
}

func castString(raw any) string {
	switch x := raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(raw)
}

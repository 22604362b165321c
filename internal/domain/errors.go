package domain

import (
	"fmt"

	"github.com/ougirez/facilities/internal/pkg/constants"
)

// CastError is returned when a raw value cannot be coerced to a variable's data type.
type CastError struct {
	DataType DataType
	Raw      any
	Err      error
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot cast %v (%T) to %s: %v", e.Raw, e.Raw, e.DataType, e.Err)
}

func (e *CastError) Unwrap() []error {
	return []error{constants.ErrCast, e.Err}
}

// UnsupportedTypeError is returned for data types outside float, boolean and string.
type UnsupportedTypeError struct {
	DataType DataType
	Variable *Variable
}

func (e *UnsupportedTypeError) Error() string {
	if e.Variable != nil {
		return fmt.Sprintf("unsupported data type %q for variable %s, want one of %v", e.DataType, e.Variable, DataTypes)
	}
	return fmt.Sprintf("unsupported data type %q, want one of %v", e.DataType, DataTypes)
}

func (e *UnsupportedTypeError) Unwrap() error {
	return constants.ErrUnsupportedType
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

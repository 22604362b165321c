package constants

import "net/http"

type CodedError struct {
	msg  string
	code int
}

func NewCodedError(msg string, code int) *CodedError {
	return &CodedError{msg: msg, code: code}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound        = NewCodedError("not found", http.StatusNotFound)
	ErrVariableNotFound  = NewCodedError("variable not found", http.StatusNotFound)
	ErrFacilityNotFound  = NewCodedError("facility not found", http.StatusNotFound)
	ErrUnauthorized      = NewCodedError("unauthorized", http.StatusUnauthorized)
	ErrBadRequest        = NewCodedError("bad request", http.StatusBadRequest)
	ErrCast              = NewCodedError("value cannot be cast to the variable data type", http.StatusUnprocessableEntity)
	ErrUnsupportedType   = NewCodedError("unsupported data type", http.StatusUnprocessableEntity)
	ErrInvalidFormula    = NewCodedError("invalid formula", http.StatusUnprocessableEntity)
	ErrDuplicateVariable = NewCodedError("variable already registered", http.StatusConflict)
)

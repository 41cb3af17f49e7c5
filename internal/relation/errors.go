package relation

import (
	"errors"
	"fmt"

	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/order"
)

// ErrorCode categorizes relation errors.
type ErrorCode string

const (
	// ErrCodeAttributeNotFound indicates a predicate or ordering key read an
	// attribute the record does not expose.
	ErrCodeAttributeNotFound ErrorCode = "ATTRIBUTE_NOT_FOUND"

	// ErrCodeIncomparable indicates an ordering key compared values of
	// different kinds.
	ErrCodeIncomparable ErrorCode = "INCOMPARABLE_VALUES"

	// ErrCodeInvalidDirection indicates an ordering direction token other
	// than asc or desc.
	ErrCodeInvalidDirection ErrorCode = "INVALID_DIRECTION"

	// ErrCodeInvalidArgument indicates a caller error such as a negative
	// offset or an unknown clause name.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeRecordNotFound indicates Find had no record with the given
	// primary key.
	ErrCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	// ErrCodeUnknownOperation indicates neither an extension nor the model
	// answers an operation name.
	ErrCodeUnknownOperation ErrorCode = "UNKNOWN_OPERATION"
)

// Error is the structured error returned by relation operations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Model names the model the relation queries.
	Model string

	// Key is the primary key attribute (RECORD_NOT_FOUND only).
	Key string

	// ID is the attempted primary key value (RECORD_NOT_FOUND only).
	ID ir.IRValue

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s: %s (model=%s)", e.Code, e.Message, e.Model)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so errors.Is matches the ir and order
// sentinels.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsRecordNotFound reports whether err is a RECORD_NOT_FOUND error.
func IsRecordNotFound(err error) bool {
	return hasCode(err, ErrCodeRecordNotFound)
}

// IsAttributeNotFound reports whether err stems from a missing attribute,
// either as a relation Error or as a bare ir.ErrAttributeNotFound.
func IsAttributeNotFound(err error) bool {
	return hasCode(err, ErrCodeAttributeNotFound) || errors.Is(err, ir.ErrAttributeNotFound)
}

// IsInvalidDirection reports whether err stems from a bad direction token.
func IsInvalidDirection(err error) bool {
	return hasCode(err, ErrCodeInvalidDirection) || errors.Is(err, order.ErrInvalidDirection)
}

// IsInvalidArgument reports whether err is an INVALID_ARGUMENT error.
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrCodeInvalidArgument)
}

// IsUnknownOperation reports whether err is an UNKNOWN_OPERATION error.
func IsUnknownOperation(err error) bool {
	return hasCode(err, ErrCodeUnknownOperation)
}

// NewRecordNotFoundError creates the error returned by Find.
func NewRecordNotFoundError(model, key string, id ir.IRValue) *Error {
	return &Error{
		Code:    ErrCodeRecordNotFound,
		Message: fmt.Sprintf("couldn't find %s with %s=%s", model, key, ir.Format(id)),
		Model:   model,
		Key:     key,
		ID:      id,
	}
}

func invalidArgument(model, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf(format, args...),
		Model:   model,
	}
}

// evaluationError classifies a failure raised while filtering or sorting.
func evaluationError(model string, err error) error {
	code := ErrCodeInvalidArgument
	switch {
	case errors.Is(err, ir.ErrAttributeNotFound):
		code = ErrCodeAttributeNotFound
	case errors.Is(err, ir.ErrIncomparable):
		code = ErrCodeIncomparable
	}
	return &Error{Code: code, Message: err.Error(), Model: model, Err: err}
}

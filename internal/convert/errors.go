package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/cqlsolr/internal/cql"
)

// ConversionError is returned for every failed conversion.
//
// Conversion errors fall into two groups:
//   - user errors: the query itself is wrong (INVALID_VALUE, NOT_FOUND, UNSORTABLE)
//   - BUG errors: a converter broke its contract (empty output for a clause it
//     claimed, malformed output from a lower layer). These indicate a defect
//     and should be reported, not fixed by the user.
type ConversionError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field is the CQL field being converted, when known.
	Field string

	// Pos is the source position of the offending node.
	Pos cql.Pos

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes conversion errors.
type ErrorCode string

const (
	// ErrCodeInvalidValue indicates a value that does not fit the field
	// (non-numeric content id, arguments given to a function without any).
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeNotFound indicates an external lookup found nothing.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeUnsortable indicates no sort converter handles a field.
	ErrCodeUnsortable ErrorCode = "UNSORTABLE"

	// ErrCodeBug indicates a violated engine invariant.
	ErrCodeBug ErrorCode = "BUG"
)

const reportBug = "This is unexpected, please report an issue."

// Error implements the error interface.
func (e *ConversionError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Code == ErrCodeBug {
		b.WriteString(" ")
		b.WriteString(reportBug)
	}
	switch {
	case e.Field != "" && e.Pos.IsValid():
		fmt.Fprintf(&b, " (field=%s, at %s)", e.Field, e.Pos)
	case e.Field != "":
		fmt.Fprintf(&b, " (field=%s)", e.Field)
	case e.Pos.IsValid():
		fmt.Fprintf(&b, " (at %s)", e.Pos)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first ConversionError in err's chain,
// or "" if there is none.
func CodeOf(err error) ErrorCode {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsBug returns true if err reports a violated engine invariant.
// Uses errors.As to handle wrapped errors.
func IsBug(err error) bool {
	return CodeOf(err) == ErrCodeBug
}

// IsInvalidValue returns true if err reports a malformed value.
func IsInvalidValue(err error) bool {
	return CodeOf(err) == ErrCodeInvalidValue
}

// IsNotFound returns true if err reports an unresolvable reference.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsUnsortable returns true if err reports a field that cannot be sorted on.
func IsUnsortable(err error) bool {
	return CodeOf(err) == ErrCodeUnsortable
}

// NewInvalidValueError creates an INVALID_VALUE error.
func NewInvalidValueError(pos cql.Pos, field, format string, args ...any) *ConversionError {
	return &ConversionError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
		Pos:     pos,
	}
}

// NewNotFoundError creates a NOT_FOUND error wrapping the lookup failure, if any.
func NewNotFoundError(pos cql.Pos, field string, cause error, format string, args ...any) *ConversionError {
	return &ConversionError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
		Pos:     pos,
		Err:     cause,
	}
}

// NewUnsortableError creates an UNSORTABLE error for field.
func NewUnsortableError(pos cql.Pos, field string) *ConversionError {
	return &ConversionError{
		Code:    ErrCodeUnsortable,
		Message: fmt.Sprintf("ordering by field [%s] is not supported", field),
		Field:   field,
		Pos:     pos,
	}
}

// NewBugError creates a BUG error.
func NewBugError(pos cql.Pos, field, format string, args ...any) *ConversionError {
	return &ConversionError{
		Code:    ErrCodeBug,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
		Pos:     pos,
	}
}

// asConversionError passes ConversionErrors through and wraps anything else
// returned by a converter as a BUG: converters must report typed errors.
func asConversionError(err error, pos cql.Pos, field string) error {
	if err == nil {
		return nil
	}
	var ce *ConversionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConversionError{
		Code:    ErrCodeBug,
		Message: "converter returned an untyped error",
		Field:   field,
		Pos:     pos,
		Err:     err,
	}
}

// Package validation carries field-level input errors from use cases to the
// HTTP adapter.
package validation

import (
	"errors"
	"strings"
)

var ErrInvalid = errors.New("validation failed")

type FieldError struct {
	Field   string
	Message string
}

// Error is a list of field problems. errors.Is(err, ErrInvalid) holds for it.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Field builds a single-field validation error.
func Field(field, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a problem; use Err to return nil when nothing was added.
func (e *Error) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *Error) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

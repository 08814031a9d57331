package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no record matches the requested id.
var ErrNotFound = errors.New("feedback not found")

// FieldError describes one field that failed schema validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a record violates the feedback schema.
// Nothing is written when it is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "Feedback validation failed: " + strings.Join(parts, ", ")
}

// HasField reports whether field is among the failed fields.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// NewFieldError builds a single-field ValidationError.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

package apierrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the five outcomes the API distinguishes. Handlers map
// them to 400/401/403/404/409 respectively.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// FieldErrors carries per-field validation messages to the boundary, where
// they are rendered as {"field": ["message", ...]}.
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, messages := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(messages, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Unwrap makes errors.Is(fe, ErrValidation) hold for any field error set.
func (fe FieldErrors) Unwrap() error {
	return ErrValidation
}

// Add appends a message for a field and returns the receiver so calls chain.
func (fe FieldErrors) Add(field, message string) FieldErrors {
	fe[field] = append(fe[field], message)
	return fe
}

// NewFieldError builds a single-field validation error.
func NewFieldError(field, message string) FieldErrors {
	return FieldErrors{field: {message}}
}

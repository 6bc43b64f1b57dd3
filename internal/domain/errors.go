package domain

import (
	"errors"
	"strings"
)

// ErrNotAuthenticated is returned when an operation needs a user id the session lacks.
// It is handled locally and never reaches the network.
var ErrNotAuthenticated = errors.New("not authenticated")

// SuccessResponse is the acknowledgement body for deletes
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the structured error body the backend sends on failures
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode *int   `json:"statusCode,omitempty"`
}

// Text returns the most specific human-readable part of the payload
func (e ErrorResponse) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// ValidationError is a local, field-level input problem
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every field problem found in one pass
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message for a field, or "" when the field is valid
func (v ValidationErrors) Field(name string) string {
	for _, e := range v {
		if e.Field == name {
			return e.Message
		}
	}
	return ""
}

// Add appends a field problem
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, &ValidationError{Field: field, Message: message})
}

// Err returns nil when nothing was collected
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

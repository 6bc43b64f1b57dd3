package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tair/voltmarket/internal/domain"
)

// NetworkError is a non-2xx response from the backend
type NetworkError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	// Payload is set when the body was a structured ErrorResponse
	Payload *domain.ErrorResponse
}

func (e *NetworkError) Error() string {
	msg := http.StatusText(e.StatusCode)
	if e.Payload != nil && e.Payload.Text() != "" {
		msg = e.Payload.Text()
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Structured reports whether the backend sent a readable error payload
func (e *NetworkError) Structured() bool {
	return e.Payload != nil && e.Payload.Text() != ""
}

// Message returns the backend's message, or fallback when the body was not structured
func (e *NetworkError) Message(fallback string) string {
	if e.Structured() {
		return e.Payload.Text()
	}
	return fallback
}

// TransportError means no response was received (connectivity, timeout, cancellation)
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError means a 2xx response did not match the expected schema
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newNetworkError(method, path string, status int, body []byte) *NetworkError {
	ne := &NetworkError{Method: method, Path: path, StatusCode: status, Body: body}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var payload domain.ErrorResponse
		if err := json.Unmarshal(body, &payload); err == nil && payload.Text() != "" {
			ne.Payload = &payload
		}
	}
	return ne
}

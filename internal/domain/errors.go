package domain

import (
	"fmt"
	"strings"
)

// AdapterError is the catch-all failure for backend communication. It carries
// the backend system name and wraps the original cause so diagnostics are
// never lost on the way up.
type AdapterError struct {
	Message string
	System  string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.System != "" {
		return fmt.Sprintf("%s (system: %s)", e.Message, e.System)
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error { return e.Err }

// NewAdapterError wraps err as a backend communication failure.
func NewAdapterError(message, system string, err error) *AdapterError {
	return &AdapterError{Message: message, System: system, Err: err}
}

// EntityNotFoundError is raised when a backend reports a missing resource.
// It must reach the caller unchanged through every layer.
type EntityNotFoundError struct {
	EntityType string
	EntityID   string
	System     string
}

func (e *EntityNotFoundError) Error() string {
	msg := fmt.Sprintf("%s with ID '%s' not found", capitalize(e.EntityType), e.EntityID)
	if e.System != "" {
		msg += fmt.Sprintf(" (system: %s)", e.System)
	}
	return msg
}

// AuthenticationError indicates a login or session failure with an external
// system. Like EntityNotFoundError it propagates unchanged.
type AuthenticationError struct {
	Message string
	System  string
}

func (e *AuthenticationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "authentication failed"
	}
	if e.System != "" {
		msg += fmt.Sprintf(" (system: %s)", e.System)
	}
	return msg
}

// RateLimitError is raised on a backend 429. RetryAfter is the number of
// seconds the backend asked us to wait. The transport never retries it; the
// caller decides how to honor the hint.
type RateLimitError struct {
	Message    string
	System     string
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "rate limit exceeded"
	}
	if e.System != "" {
		msg += fmt.Sprintf(" (system: %s)", e.System)
	}
	return msg
}

// ConversionError indicates a field-mapping failure, tagged with the backend
// the conversion was running against.
type ConversionError struct {
	Message string
	System  string
	Err     error
}

func (e *ConversionError) Error() string {
	if e.System != "" {
		return fmt.Sprintf("%s (system: %s)", e.Message, e.System)
	}
	return e.Message
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ConfigurationError indicates missing or invalid backend configuration,
// an unknown adapter, or an unknown entity type.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ValidationError indicates a standardized-schema violation on inbound data.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation error"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

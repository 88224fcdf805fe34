// Package validation provides reusable input validation functions for dbpool.
// All validators follow a consistent pattern: they return nil on success and a
// descriptive error on failure. Errors are designed to be safe to return to
// callers (no internal details such as credentials).
package validation

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
	"unicode/utf8"
)

// Common validation errors. These are sentinel errors that can be checked with errors.Is().
var (
	// ErrRequired indicates a required field is missing or empty.
	ErrRequired = errors.New("field is required")

	// ErrTooLong indicates a string exceeds the maximum length.
	ErrTooLong = errors.New("value exceeds maximum length")

	// ErrInvalidFormat indicates a value doesn't match the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrOutOfRange indicates a numeric value is outside the allowed range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidDuration indicates an out-of-range duration.
	ErrInvalidDuration = errors.New("invalid duration")
)

// Constraints for common field types.
const (
	// MaxHostLength is the maximum length for database host names.
	MaxHostLength = 255

	// MaxDatabaseNameLength is the maximum length for database names.
	MaxDatabaseNameLength = 64

	// MinIdleTimeout is the minimum idle timeout the pool accepts.
	MinIdleTimeout = time.Second

	// MaxIdleTimeout is the maximum idle timeout the pool accepts (1 day).
	MaxIdleTimeout = 24 * time.Hour

	// MaxPoolSize is a sanity ceiling on the connection limit.
	MaxPoolSize = 10000
)

// Result represents a validation result with field context.
type Result struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (r *Result) Error() string {
	if r.Field != "" {
		return fmt.Sprintf("%s: %s", r.Field, r.Message)
	}
	return r.Message
}

// Unwrap returns the underlying error for errors.Is() support.
func (r *Result) Unwrap() error {
	return r.Err
}

// NewResult creates a validation result.
func NewResult(field, message string, err error) *Result {
	return &Result{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Required validates that a string is non-empty.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewResult(field, "is required", ErrRequired)
	}
	return nil
}

// MaxLength validates that a string doesn't exceed the maximum length.
func MaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return NewResult(field, fmt.Sprintf("exceeds maximum length of %d characters", max), ErrTooLong)
	}
	return nil
}

// IntRange validates that an integer falls within [min, max].
func IntRange(field string, value, min, max int) error {
	if value < min || value > max {
		return NewResult(field, fmt.Sprintf("must be between %d and %d", min, max), ErrOutOfRange)
	}
	return nil
}

// Positive validates that an integer is at least 1.
func Positive(field string, value int) error {
	if value < 1 {
		return NewResult(field, "must be at least 1", ErrOutOfRange)
	}
	return nil
}

// DurationRange validates that a duration falls within [min, max].
func DurationRange(field string, value, min, max time.Duration) error {
	if value < min {
		return NewResult(field, fmt.Sprintf("must be at least %s", min), ErrInvalidDuration)
	}
	if value > max {
		return NewResult(field, fmt.Sprintf("must be at most %s", max), ErrInvalidDuration)
	}
	return nil
}

// HostPort validates a "host:port" address.
func HostPort(field, value string) error {
	if err := Required(field, value); err != nil {
		return err
	}
	host, port, err := net.SplitHostPort(value)
	if err != nil {
		return NewResult(field, "must be a host:port address", ErrInvalidFormat)
	}
	if host == "" || port == "" {
		return NewResult(field, "must be a host:port address", ErrInvalidFormat)
	}
	return nil
}

// ---- Pool-specific validators ----
// These validate pool construction parameters and return user-safe messages.

// PoolSize validates a connection limit.
func PoolSize(field string, value int) error {
	if err := Positive(field, value); err != nil {
		return err
	}
	return IntRange(field, value, 1, MaxPoolSize)
}

// IdleTimeout validates an idle-connection timeout.
func IdleTimeout(field string, value time.Duration) error {
	return DurationRange(field, value, MinIdleTimeout, MaxIdleTimeout)
}

// DatabaseName validates a database name.
func DatabaseName(field, value string) error {
	if err := Required(field, value); err != nil {
		return err
	}
	return MaxLength(field, value, MaxDatabaseNameLength)
}

// Package errors provides structured error types for the dbpool connection pool.
// All errors are designed to be safe to surface to application code without
// exposing driver-internal details such as credentials in DSNs.
//
// This package provides:
//   - Sentinel errors for common pool error conditions
//   - Error codes for categorizing failures in embedding drivers
//   - Error wrapping with context preservation
package errors

import (
	"errors"
	"fmt"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Error codes for categorizing errors. Embedding drivers can map these
// onto their own error taxonomy without string matching.
const (
	CodeInternal      = 1 // Internal error
	CodeConfiguration = 2 // Invalid pool configuration
	CodeClosed        = 3 // Pool is closed
	CodeConnect       = 4 // Connector failed to produce a link
	CodeOwnership     = 5 // Resource not owned by this pool
	CodeState         = 6 // Invalid state transition
	CodeTimeout       = 7 // Operation timeout
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrPoolClosed indicates the pool has been closed and rejects new borrows.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrConfiguration indicates an invalid pool configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotOwned indicates a connection that is not owned by the pool.
	ErrNotOwned = errors.New("connection not owned by pool")

	// ErrLinkDead indicates a connection that is no longer alive.
	ErrLinkDead = errors.New("connection is dead")

	// ErrConnection indicates a connector failure.
	ErrConnection = errors.New("connection error")

	// ErrStatementClosed indicates use of a closed prepared statement.
	ErrStatementClosed = errors.New("statement is closed")

	// ErrTxDone indicates a transaction that was already committed or rolled back.
	ErrTxDone = errors.New("transaction already concluded")

	// ErrResultClosed indicates use of a result that was already closed.
	ErrResultClosed = errors.New("result is closed")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidState indicates an invalid state transition.
	ErrInvalidState = errors.New("invalid state")

	// ErrInternal indicates an internal error.
	ErrInternal = errors.New("internal error")
)

// Configuration errors
var (
	// ErrMaxConnections indicates an out-of-range connection limit.
	ErrMaxConnections = fmt.Errorf("max connections must be at least 1: %w", ErrConfiguration)

	// ErrIdleTimeout indicates an out-of-range idle timeout.
	ErrIdleTimeout = fmt.Errorf("idle timeout must be at least one second: %w", ErrConfiguration)

	// ErrNoConnector indicates no connector was supplied and no default exists.
	ErrNoConnector = fmt.Errorf("no connector available: %w", ErrConfiguration)
)

// Error is a structured error with a code and safe message.
// It implements the error interface and preserves the underlying
// cause for errors.Is/As without exposing it in client messages.
type Error struct {
	// Code is the error code for categorization
	Code int `json:"code"`
	// Message is a safe, user-facing error message
	Message string `json:"message"`
	// Err is the underlying error (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// SafeMessage returns a client-safe error message without internal details.
func (e *Error) SafeMessage() string {
	return e.Message
}

// New creates a new structured error with the given code and message.
func New(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a code and safe message.
// The original error is preserved for debugging but not exposed to clients.
func Wrap(code int, message string, err error) *Error {
	if err != nil {
		log.WithField("code", code).WithError(err).Debug("wrapping error")
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WrapConnect wraps a connector failure. The connector's error stays in the
// chain for errors.Is/As, alongside ErrConnection.
func WrapConnect(err error) *Error {
	return &Error{
		Code:    CodeConnect,
		Message: "connect failed",
		Err:     fmt.Errorf("%w: %w", ErrConnection, err),
	}
}

// FromSentinel creates a structured error from a sentinel error.
// It automatically assigns an appropriate error code based on the error type.
func FromSentinel(err error) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    codeFromError(err),
		Message: err.Error(),
		Err:     err,
	}
}

// codeFromError maps sentinel errors to error codes.
func codeFromError(err error) int {
	switch {
	case errors.Is(err, ErrConfiguration):
		return CodeConfiguration
	case errors.Is(err, ErrPoolClosed):
		return CodeClosed
	case errors.Is(err, ErrConnection):
		return CodeConnect
	case errors.Is(err, ErrNotOwned):
		return CodeOwnership
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrStatementClosed),
		errors.Is(err, ErrTxDone),
		errors.Is(err, ErrResultClosed),
		errors.Is(err, ErrInvalidState):
		return CodeState
	default:
		return CodeInternal
	}
}

// IsPoolClosed returns true if the error indicates the pool is closed.
func IsPoolClosed(err error) bool {
	return errors.Is(err, ErrPoolClosed)
}

// IsConfiguration returns true if the error indicates invalid configuration.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsNotOwned returns true if the error indicates a foreign connection.
func IsNotOwned(err error) bool {
	return errors.Is(err, ErrNotOwned)
}

// IsConnection returns true if the error indicates a connector failure.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsTimeout returns true if the error indicates a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsTxDone returns true if the error indicates a concluded transaction.
func IsTxDone(err error) bool {
	return errors.Is(err, ErrTxDone)
}

// Join combines multiple errors into a single error.
// Returns nil if all errors are nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target,
// and if so, sets target to that error value and returns true.
func As(err error, target any) bool {
	return errors.As(err, target)
}

package score_session

import (
	"errors"
	"fmt"
)

// Common errors for the score session
var (
	// ErrNotInitialized is returned when a session is used before a record
	// has been loaded.
	ErrNotInitialized = errors.New("score session not initialized")

	// ErrStorageUnavailable is returned when the score store fails. The store
	// error is kept in the chain.
	ErrStorageUnavailable = errors.New("score storage unavailable")

	// ErrInvalidResultBatch is returned when a batch holds a malformed result
	// or, with a catalog configured, references unknown content.
	ErrInvalidResultBatch = errors.New("invalid result batch")
)

// ServiceError wraps errors from the score session with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "initialize", "record_results")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// storageError wraps a store failure for operation op.
func storageError(op, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: op,
		Message:   message,
		Err:       fmt.Errorf("%w: %w", ErrStorageUnavailable, err),
	}
}

// batchError reports a rejected result batch.
func batchError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: opRecordResults,
		Message:   message,
		Err:       fmt.Errorf("%w: %w", ErrInvalidResultBatch, err),
	}
}

// Operation names used in ServiceError.
const (
	opInitialize    = "initialize"
	opRecordResults = "record_results"
	opReset         = "reset"
	opResetParents  = "reset_parents"
)

func indexError(i int) error {
	return fmt.Errorf("result %d", i)
}

func errUnknownWord(parentID, wordID string) error {
	return fmt.Errorf("word %q is not part of %q", wordID, parentID)
}

package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for durable memory operations.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a lookup miss by record id.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeEncodeFailed indicates a failure to serialize a record for storage.
	ErrCodeEncodeFailed ErrorCode = "ENCODE_FAILED"
	// ErrCodeDecodeFailed indicates a failure to deserialize a stored record.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"
	// ErrCodeInvalidData indicates a stored record is corrupt (e.g. a vector
	// blob whose byte length is not a multiple of 4).
	ErrCodeInvalidData ErrorCode = "INVALID_DATA"
	// ErrCodeIOFailure indicates a disk or storage engine failure.
	ErrCodeIOFailure ErrorCode = "IO_FAILURE"
	// ErrCodeDimensionMismatch indicates the store was opened with a vector
	// dimension different from the one it was created with.
	ErrCodeDimensionMismatch ErrorCode = "DIMENSION_MISMATCH"
)

// StoreError represents a structured error from the durable store.
type StoreError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *StoreError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// NotFound creates a lookup-miss error for the given record id.
func NotFound(id string) *StoreError {
	return &StoreError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("memory record not found: %s", id),
	}
}

// EncodeFailed creates an encode error.
func EncodeFailed(msg string, cause error) *StoreError {
	return &StoreError{Code: ErrCodeEncodeFailed, Message: msg, Cause: cause}
}

// DecodeFailed creates a decode error.
func DecodeFailed(msg string, cause error) *StoreError {
	return &StoreError{Code: ErrCodeDecodeFailed, Message: msg, Cause: cause}
}

// InvalidData creates a corruption error.
func InvalidData(msg string) *StoreError {
	return &StoreError{Code: ErrCodeInvalidData, Message: msg}
}

// IOFailure creates a storage engine failure error.
func IOFailure(msg string, cause error) *StoreError {
	return &StoreError{Code: ErrCodeIOFailure, Message: msg, Cause: cause}
}

// DimensionMismatch creates a dimension guard error.
func DimensionMismatch(stored, configured int) *StoreError {
	return &StoreError{
		Code:    ErrCodeDimensionMismatch,
		Message: fmt.Sprintf("store created with dimension %d, configured %d", stored, configured),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *StoreError {
	return &StoreError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if serr, ok := err.(*StoreError); ok {
		return serr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a StoreError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if serr, ok := err.(*StoreError); ok {
		return serr.Code
	}
	return defaultCode
}

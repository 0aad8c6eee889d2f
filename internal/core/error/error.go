package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a key that does not exist or has expired.
	RedisNotFoundMessage = "redis key not found"
	// InvalidRequestMessage describes requests missing required fields.
	InvalidRequestMessage = "invalid request"
)

// ErrGenerationUnavailable marks a generation backend that could not produce
// an answer, as opposed to a backend that produced an empty one.
var ErrGenerationUnavailable = errors.New("generation backend unavailable")

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// InvalidRequest builds the one error kind that is surfaced to callers as a
// hard failure; everything else in the pipeline degrades instead.
func InvalidRequest(reason string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Message: InvalidRequestMessage + ": " + reason,
	}
}

// IsInvalidRequest reports whether err is a client-facing request rejection.
func IsInvalidRequest(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Status == http.StatusBadRequest
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

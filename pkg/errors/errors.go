// Package errors defines the sentinel errors shared by the KWIC engine and
// its services, plus AppError, which attaches a caller-facing message and an
// HTTP status to a sentinel.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmptyLine            = fmt.Errorf("%w: empty line", ErrInvalidInput)
	ErrEmptyQuery           = fmt.Errorf("%w: empty query", ErrInvalidInput)
	ErrLineNotFound         = errors.New("line not found")
	ErrSourceUnavailable    = errors.New("text source unavailable")
	ErrStopwordsUnavailable = errors.New("stopword source unavailable")
	ErrInternal             = errors.New("internal error")
	ErrTimeout              = errors.New("operation timed out")
)

// AppError pairs a sentinel with a message for callers. Cause, when set,
// is the lower-level error that triggered it; errors.Is matches both.
type AppError struct {
	Err        error
	Cause      error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Err, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Wrap is New with an underlying cause kept in the error chain.
func Wrap(sentinel error, statusCode int, cause error, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Cause:      cause,
		Message:    message,
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps err to a response status. An AppError's own status
// wins; otherwise the sentinel decides.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrSourceUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

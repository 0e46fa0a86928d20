package exception

import (
	"errors"
	"fmt"
	"net/http"
)

// ApplicationError handles application level errors.
// StatusCode is only meaningful on the HTTP surface, the crawler matches on the error itself.
type ApplicationError struct {
	Message    string
	StatusCode int
	Cause      error
}

// Error interface implementation.
func (e ApplicationError) Error() string {
	if e.Cause == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Message, e.Cause)
}

func (e ApplicationError) Unwrap() error {
	return e.Cause
}

func (e ApplicationError) Is(target error) bool {
	var targetErr ApplicationError

	if !errors.As(target, &targetErr) {
		return false
	}

	return e.Message == targetErr.Message
}

// Wrap returns a copy of the sentinel carrying cause.
func (e ApplicationError) Wrap(cause error) ApplicationError {
	e.Cause = cause

	return e
}

// ErrorCode returns error code for an application error.
func (e ApplicationError) ErrorCode() int {
	if e.StatusCode == 0 {
		return http.StatusInternalServerError
	}

	return e.StatusCode
}

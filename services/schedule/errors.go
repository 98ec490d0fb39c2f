package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrLockTimeout     = errors.New("timed out waiting for provider booking lock")
)

// ValidationError reports input rejected before the store was touched.
type ValidationError struct {
	Code    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func newValidationError(err error) error {
	return &ValidationError{Code: "invalidSchedule", Message: err.Error(), Err: err}
}

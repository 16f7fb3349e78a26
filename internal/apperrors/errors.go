package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidState indicates that the operation is not permitted in the entity's
// current status, e.g. recording a payment against a canceled invoice or
// deleting a non-draft invoice.
var ErrInvalidState = errors.New("operation not permitted in current state")

// ErrOverpayment indicates that a payment would push an invoice's amount paid past its total.
var ErrOverpayment = errors.New("payment exceeds invoice balance")

// ErrConflict indicates a transactional conflict; the caller may retry.
var ErrConflict = errors.New("conflicting concurrent update")

// ErrExternalService indicates a collaborator (mail sender, renderer) failed.
// Never fatal to a ledger mutation.
var ErrExternalService = errors.New("external service failure")

// ErrInternal is returned when an unexpected failure must not leak details to callers.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower-level failure (usually from the database layer) with a
// stable message so raw driver errors never surface to API callers.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

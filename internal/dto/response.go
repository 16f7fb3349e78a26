package dto

// ErrorKind identifies a failure class in API responses. Callers never see
// raw storage or driver error text for ledger-mutating endpoints.
type ErrorKind string

const (
	ErrKindValidation      ErrorKind = "VALIDATION_ERROR"
	ErrKindNotFound        ErrorKind = "NOT_FOUND"
	ErrKindInvalidState    ErrorKind = "INVALID_STATE"
	ErrKindOverpayment     ErrorKind = "OVERPAYMENT"
	ErrKindConflict        ErrorKind = "CONFLICT"
	ErrKindExternalService ErrorKind = "EXTERNAL_SERVICE"
	ErrKindInternal        ErrorKind = "INTERNAL"
)

// ErrorResponse is the structured failure envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorKind `json:"error"`
	Message string    `json:"message"`
}

// SuccessResponse wraps a mutated or fetched entity with a success flag.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// NewError builds a failure envelope.
func NewError(kind ErrorKind, message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: kind, Message: message}
}

// NewSuccess wraps data in a success envelope.
func NewSuccess(data any) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

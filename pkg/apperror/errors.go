package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger (LED) ----

// ErrInvalidPosting rejects a posting before any mutation: non-positive
// amount, unknown wallet, or unbalanced debit/credit totals.
func ErrInvalidPosting(reason string) *AppError {
	return New("LED_001", fmt.Sprintf("Invalid posting: %s", reason), http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("LED_002", "Insufficient balance", http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("LED_003", "Amount must be positive", http.StatusBadRequest)
}

func ErrUnknownPackage() *AppError {
	return New("LED_004", "Unknown coin package", http.StatusBadRequest)
}

func ErrGrantAlreadyClaimed() *AppError {
	return New("LED_005", "Daily grant already claimed", http.StatusConflict)
}

// ---- Rounds (RND) ----

func ErrNotFound(entity string) *AppError {
	return New("RND_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrInvalidState rejects an operation on a round outside the required
// state, e.g. resolving a round that is already RESOLVED.
func ErrInvalidState(entity string) *AppError {
	return New("RND_002", fmt.Sprintf("%s is not in a valid state for this operation", entity), http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Seed encryption failure", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("LED_003", message, http.StatusBadRequest)
}

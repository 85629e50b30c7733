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

// ---- Ledger Business Logic (LED) ----

func ErrNotAuthorized() *AppError {
	return New("LED_001", "Caller is not authorized for this operation", http.StatusForbidden)
}

func ErrInvalidAmount() *AppError {
	return New("LED_002", "Amount must be a positive integer", http.StatusBadRequest)
}

func ErrPaymentNotFound() *AppError {
	return New("LED_003", "Payment not found", http.StatusNotFound)
}

func ErrPaymentAlreadyProcessed() *AppError {
	return New("LED_004", "Payment has already been settled", http.StatusConflict)
}

func ErrInsufficientBalance() *AppError {
	return New("LED_005", "Withdrawal amount exceeds merchant balance", http.StatusUnprocessableEntity)
}

func ErrCurrencyNotSupported() *AppError {
	return New("LED_006", "Currency is unknown or not accepting payments", http.StatusBadRequest)
}

func ErrAmountOverflow() *AppError {
	return New("LED_007", "Balance credit would overflow", http.StatusUnprocessableEntity)
}

// ---- Transfer primitive (XFR) ----

// ErrTransferFailed reports a failure of the external value-transfer
// primitive. Ledger state is guaranteed untouched when this is returned.
func ErrTransferFailed(err error) *AppError {
	return Wrap("XFR_001", "Value transfer failed", http.StatusBadGateway, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-shape validation error (malformed UUIDs, bad
// currency-code format, missing fields). Distinct from ErrInvalidAmount,
// which is the domain rule on non-positive amounts.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

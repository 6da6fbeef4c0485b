package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"error"`
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

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

const (
	CodeInvalidInput       = "VAL_001"
	CodeInvalidCredentials = "AUTH_001"
	CodeConflict           = "AUTH_002"
	CodeInvalidToken       = "AUTH_003"
	CodeInsufficientFunds  = "WAL_001"
	CodeInvalidPin         = "WAL_002"
	CodeUnknownRecipient   = "WAL_003"
	CodeUnauthorized       = "DEC_001"
	CodeCorrupt            = "DEC_002"
	CodeRateLimited        = "RATE_001"
	CodeInternal           = "SYS_001"
)

// ---- Validation (VAL) ----

func ErrInvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New(CodeConflict, "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Wallet (WAL) ----

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient balance", http.StatusUnprocessableEntity)
}

func ErrInvalidPin() *AppError {
	return New(CodeInvalidPin, "Invalid transaction PIN", http.StatusForbidden)
}

func ErrUnknownRecipient() *AppError {
	return New(CodeUnknownRecipient, "Recipient not found", http.StatusNotFound)
}

// ---- Decryption (DEC) ----

func ErrUnauthorized() *AppError {
	return New(CodeUnauthorized, "Not authorized to decrypt this transaction", http.StatusForbidden)
}

func ErrCorrupt(err error) *AppError {
	return Wrap(CodeCorrupt, "Stored transaction data could not be decrypted", http.StatusInternalServerError, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

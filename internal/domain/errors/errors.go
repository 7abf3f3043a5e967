package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrKeyRevoked    = errors.New("api key revoked")
	ErrKeyExpired    = errors.New("api key expired")
	ErrQuotaExceeded = errors.New("daily quota exceeded")
)

// Machine-readable rejection reasons surfaced to API callers.
const (
	ReasonNotFound      = "not_found"
	ReasonValidation    = "validation"
	ReasonUnauthorized  = "unauthorized"
	ReasonForbidden     = "forbidden"
	ReasonExpired       = "expired"
	ReasonQuotaExceeded = "quota_exceeded"
	ReasonInternal      = "internal_error"
)

// AppError represents application error with HTTP status and a stable reason code
type AppError struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code int, reason, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, ReasonNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, ReasonValidation, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, ReasonUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, ReasonForbidden, message, ErrForbidden)
}

func Expired(message string) *AppError {
	return NewAppError(http.StatusForbidden, ReasonExpired, message, ErrKeyExpired)
}

func QuotaExceeded(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, ReasonQuotaExceeded, message, ErrQuotaExceeded)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, ReasonInternal, "internal server error", err)
}

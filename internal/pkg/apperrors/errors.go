package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrUpstream       ErrorType = "UPSTREAM_ERROR"
	ErrTransport      ErrorType = "TRANSPORT_ERROR"
	ErrAuthFailed     ErrorType = "AUTH_FAILED"
	ErrForbidden      ErrorType = "FORBIDDEN"
	ErrInvalidRequest ErrorType = "INVALID_REQUEST"
	ErrNotFound       ErrorType = "NOT_FOUND"
	ErrRateLimited    ErrorType = "RATE_LIMITED"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
	}
}

// NewUpstream reports a completed upstream response outside the 2xx range.
// The status and raw body are carried as-is so callers can mirror them.
func NewUpstream(status int, body string) *AppError {
	return &AppError{
		Type:       ErrUpstream,
		Message:    body,
		HTTPStatus: status,
	}
}

// NewTransport reports an upstream call that never produced a response.
func NewTransport(cause error) *AppError {
	return &AppError{
		Type:       ErrTransport,
		Message:    "upstream request failed",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func NewNotFound(msg string) *AppError {
	return New(ErrNotFound, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// StatusCode returns a status usable on the wire for err. Codes outside the
// valid HTTP range fall back to 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	appErr := Wrap(err)
	if appErr.HTTPStatus < 100 || appErr.HTTPStatus > 599 {
		return http.StatusInternalServerError
	}
	return appErr.HTTPStatus
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

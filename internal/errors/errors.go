package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Error is the structured failure shape surfaced by every operation.
// Status drives the HTTP response code at the transport boundary.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// NotFound creates an error for a missing user/post/message.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Message: msg}
}

// InvalidArgument creates an error for bad input validation.
// Use this in the service layer before any store mutation.
func InvalidArgument(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "invalid_argument", Message: msg}
}

// Conflict creates an error for duplicate actions (already following,
// already liked, duplicate edge). No state change accompanies it.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: "conflict", Message: msg}
}

// Internal creates an error for persistence or other server-side failures.
func Internal(msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "internal", Message: msg}
}

// Map converts repo/infra errors into API errors.
// Keeps the service layer clean by centralizing error mapping.
func Map(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("record already exists")

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Status: http.StatusGatewayTimeout, Code: "timeout", Message: "request timed out"}

	case errors.Is(err, context.Canceled):
		return &Error{Status: 499, Code: "canceled", Message: "request was canceled"}

	default:
		// fallback: bubble up error message for debugging
		return Internal(err.Error())
	}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the structured failure carried from core logic to the HTTP
// layer. ErrCode follows the Matrix identity-service error code vocabulary.
type AppError struct {
	ErrCode    string `json:"errcode"`
	Message    string `json:"error"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.ErrCode, e.Message, e.Internal)
	}

	return fmt.Sprintf("%s: %s", e.ErrCode, e.Message)
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy of the AppError carrying a more specific message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Message = message
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrBadJSON = &AppError{
		ErrCode:    "M_BAD_JSON",
		Message:    "Malformed JSON",
		StatusCode: http.StatusBadRequest,
	}

	ErrMissingParams = &AppError{
		ErrCode:    "M_MISSING_PARAMS",
		Message:    "Missing parameters",
		StatusCode: http.StatusBadRequest,
	}

	ErrMissingParam = &AppError{
		ErrCode:    "M_MISSING_PARAM",
		Message:    "Missing parameter",
		StatusCode: http.StatusBadRequest,
	}

	ErrUnauthorized = &AppError{
		ErrCode:    "M_UNAUTHORIZED",
		Message:    "Unauthorized",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrTokenUnknown deliberately reuses M_UNAUTHORIZED with a 403 so the
	// lookup path does not disclose whether a token was ever issued.
	ErrTokenUnknown = &AppError{
		ErrCode:    "M_UNAUTHORIZED",
		Message:    "Invite not found",
		StatusCode: http.StatusForbidden,
	}

	ErrInvalidEmail = &AppError{
		ErrCode:    "M_INVALID_EMAIL",
		Message:    "Invalid email address provided",
		StatusCode: http.StatusBadRequest,
	}

	ErrInvalidAddress = &AppError{
		ErrCode:    "M_INVALID_ADDRESS",
		Message:    "Invalid address provided",
		StatusCode: http.StatusBadRequest,
	}

	ErrNoValidSession = &AppError{
		ErrCode:    "M_NO_VALID_SESSION",
		Message:    "No valid session was found matching that sid and client secret",
		StatusCode: http.StatusBadRequest,
	}

	ErrSessionNotValidated = &AppError{
		ErrCode:    "M_SESSION_NOT_VALIDATED",
		Message:    "This validation session has not yet been completed",
		StatusCode: http.StatusBadRequest,
	}

	ErrSessionExpired = &AppError{
		ErrCode:    "M_SESSION_EXPIRED",
		Message:    "This validation session has expired",
		StatusCode: http.StatusBadRequest,
	}

	ErrNotFound = &AppError{
		ErrCode:    "M_NOT_FOUND",
		Message:    "Not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInternalServer = &AppError{
		ErrCode:    "M_UNKNOWN",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds a new application error with the provided metadata.
func New(errcode, message string, statusCode int) *AppError {
	return &AppError{
		ErrCode:    errcode,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		ErrCode:    ErrInternalServer.ErrCode,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
// Internal detail never reaches the client; it stays on the Internal field for logs.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

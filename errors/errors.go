package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation         = fmt.Errorf("validation failed")
	ErrEmptyContent       = fmt.Errorf("%w: message content cannot be empty", ErrValidation)
	ErrUserAlreadyExists  = fmt.Errorf("username already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidSession     = fmt.Errorf("invalid or expired session")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrStorageRead        = fmt.Errorf("storage read failed")
	ErrStorageWrite       = fmt.Errorf("storage write failed")
	ErrUnsupportedSchema  = fmt.Errorf("%w: unsupported collection schema version", ErrStorageRead)
	ErrUnknownCollection  = fmt.Errorf("unknown collection")
)

// MapToHTTPStatus translates domain errors into HTTP status codes.
// Anything not recognised is reported as an internal error.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrInvalidCredentials), stderrors.Is(err, ErrInvalidSession):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

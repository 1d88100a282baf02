// Package apperror defines the error kinds shared by the services and the
// mapping from those kinds to HTTP status codes.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailConflict      = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("no token provided")
	ErrForbidden          = errors.New("invalid or expired token")
	ErrNotFound           = errors.New("not found")
)

// StatusCode maps an error returned by a service to the status the gateway
// responds with. Unknown errors are internal.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmailConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		// Login failures are a 400 for client compatibility, not a 401.
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsInternal reports whether err falls outside the known taxonomy.
func IsInternal(err error) bool {
	return err != nil && StatusCode(err) == http.StatusInternalServerError
}

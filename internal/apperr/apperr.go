// Package apperr holds the error kinds shared by the service layers.
// Collaborators wrap one of these with fmt.Errorf("...: %w", ErrX) and the
// HTTP boundary maps the kind to a status code with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrUpstream        = errors.New("upstream failure")
)

// HTTPStatus maps an error to the status code the API reports for it.
// Upstream and unknown errors collapse to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine-readable code used in error bodies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	default:
		return "internal_error"
	}
}

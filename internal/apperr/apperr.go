// Package apperr defines the error taxonomy shared by the tenant-scoped
// services. Handlers map these to HTTP statuses with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrNoOrganizationSelected is returned when a tenant-scoped operation
	// runs without an active organization. Callers should direct the user
	// to create or select an organization rather than retry.
	ErrNoOrganizationSelected = errors.New("no organization selected")

	// ErrNotFound is returned when the referenced entity does not exist
	// within the caller's organization scope.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a stock adjustment would drive
	// stock negative. Not retryable without changing the input.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDataAccess wraps transport/storage failures. Safe to retry the
	// whole operation; never retried automatically here.
	ErrDataAccess = errors.New("data access error")

	// ErrValidation is returned for malformed input caught before any
	// storage call.
	ErrValidation = errors.New("validation error")

	// ErrUnknownOrganization is returned when switching to an organization
	// the user has no active membership in.
	ErrUnknownOrganization = errors.New("unknown organization")
)

// HTTPStatus maps a service error to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoOrganizationSelected):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnknownOrganization):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

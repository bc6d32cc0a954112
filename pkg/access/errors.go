package access

import (
	"errors"
	"net/http"
)

// Decision errors. Handlers map these to HTTP status codes via HTTPStatus;
// anything else coming out of a store is a collaborator failure and must
// surface as a 500, never as a denial.
var (
	// ErrUnauthenticated indicates a required identity is absent
	ErrUnauthenticated = errors.New("authentication required")

	// ErrAccessDenied indicates the caller is authenticated but lacks the
	// role or ownership required for the operation
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates the target entity or its parent does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates a precondition on a related entity's state
	// is not met. This is not a permission denial.
	ErrInvalidState = errors.New("invalid state")
)

// HTTPStatus maps a decision error to its HTTP status code
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package httpadapter

import (
	"net/http"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// safeErrorMessage keeps internals (addresses, wrapped causes, stack detail)
// off the wire; clients get a stable, human-readable reason only.
func safeErrorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "message is required"
	case domain.IsKind(err, domain.ErrTemporary):
		return "the service is temporarily unavailable, please try again"
	default:
		return "unable to process the request, please try again"
	}
}

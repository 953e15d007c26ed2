package httpx

import (
	"errors"
	"net/http"

	"github.com/stockroom/console/internal/backend"
)

// Sentinel errors for console-side failures.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps errors to RFC7807 responses. Backend replies keep their
// status and message; an unreachable backend becomes 502.
func RespondError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	var transportErr *backend.TransportError
	switch {
	case errors.As(err, &apiErr):
		Problem(w, apiErr.Status, http.StatusText(apiErr.Status), apiErr.Message)
	case errors.As(err, &transportErr):
		Problem(w, http.StatusBadGateway, "Bad Gateway", backend.UserMessage(err, ""))
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

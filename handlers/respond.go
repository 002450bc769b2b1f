// ABOUTME: JSON response helpers shared by all handlers
// ABOUTME: Maps service errors onto HTTP status codes and the {error} envelope

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/models"
	"github.com/markalston/vip-marketplace-proxy/services"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, models.ErrorResponse{Error: message})
}

// writeUpstream relays an upstream answer with its original status.
func writeUpstream(w http.ResponseWriter, resp *services.UpstreamResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}

// writeFailure answers a request that could not be relayed.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *services.ValidationError
		authErr       *services.UpstreamAuthError
		tooLarge      *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, validationErr.Message, http.StatusBadRequest)
		return
	case errors.As(err, &tooLarge):
		writeError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, config.ErrUnknownEnvironment):
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)

	switch {
	case errors.As(err, &authErr):
		status := authErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, models.ErrorResponse{
			Error:   "Adobe IMS authentication failed",
			Details: authErr.Body,
		})
	case errors.Is(err, services.ErrUpstreamTimeout):
		writeError(w, err.Error(), http.StatusGatewayTimeout)
	default:
		writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

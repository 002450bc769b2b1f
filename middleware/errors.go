// ABOUTME: JSON error response helper for middleware
// ABOUTME: Ensures middleware error responses match the proxy's error envelope

package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/markalston/vip-marketplace-proxy/models"
)

// writeJSONError writes {"error": message} with the given status code.
func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: message})
}

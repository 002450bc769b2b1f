// ABOUTME: Prometheus instrumentation middleware
// ABOUTME: Records request count and latency per registered route pattern

package middleware

import (
	"net/http"
	"time"

	"github.com/markalston/vip-marketplace-proxy/metrics"
)

// Instrument records every request under route, the registered pattern, so
// label cardinality stays bounded no matter what IDs appear in paths.
// A nil m disables instrumentation.
func Instrument(m *metrics.Metrics, route string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if m == nil {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)
			next(wrapped, r)
			m.ObserveRequest(r.Method, route, wrapped.statusCode, time.Since(start))
		}
	}
}

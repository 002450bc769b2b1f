// ABOUTME: Assembles the route table, metrics endpoint and global middleware
// ABOUTME: Shared by main and the end-to-end tests

package handlers

import (
	"net/http"

	"github.com/markalston/vip-marketplace-proxy/metrics"
	"github.com/markalston/vip-marketplace-proxy/middleware"
)

type RouterOptions struct {
	AllowedOrigins []string
	RateLimiter    middleware.Limiter // nil disables rate limiting
	Metrics        *metrics.Metrics   // nil disables /metrics and instrumentation
}

// NewRouter registers every route on a fresh ServeMux. Logging, CORS and
// rate limiting wrap the whole mux so that preflight and unknown paths are
// handled too.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		mux.HandleFunc(route.Pattern(), middleware.Instrument(opts.Metrics, route.Path)(route.Handler))
	}
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}
	mux.HandleFunc("/", notFound)

	return middleware.Chain(mux.ServeHTTP,
		middleware.LogRequest,
		middleware.CORS(opts.AllowedOrigins),
		middleware.RateLimit(opts.RateLimiter, middleware.ClientIP),
	)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, "Not found: "+r.Method+" "+r.URL.Path, http.StatusNotFound)
}

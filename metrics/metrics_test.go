package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/api/status", http.StatusOK, 5*time.Millisecond)
	m.ObserveUpstream("adobe:customer", http.StatusNotFound, time.Millisecond)
	m.ObserveUpstream("adobe:customer", 0, time.Millisecond)
	m.TokenFetched("sandbox", nil)
	m.TokenFetched("sandbox", errors.New("boom"))
	m.TokenCacheHit("sandbox")
	m.TokenCacheHit("sandbox")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/status", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamTotal.WithLabelValues("adobe:customer", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamTotal.WithLabelValues("adobe:customer", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenFetches.WithLabelValues("sandbox", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tokenCacheHits.WithLabelValues("sandbox")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, 0)
		m.ObserveUpstream("x", 200, 0)
		m.TokenFetched("sandbox", nil)
		m.TokenCacheHit("sandbox")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.TokenCacheHit("production")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `vip_proxy_token_cache_hits_total{environment="production"} 1`)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markalston/vip-marketplace-proxy/metrics"
)

func TestInstrument_RecordsRoutePattern(t *testing.T) {
	m := metrics.New()
	h := Instrument(m, "/v3/customers/{customerId}")(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v3/customers/abc", nil))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v3/customers/def", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	want := `vip_proxy_requests_total{method="GET",route="/v3/customers/{customerId}",status="404"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics output missing %q", want)
	}
}

func TestInstrument_NilMetricsPassesThrough(t *testing.T) {
	called := false
	h := Instrument(nil, "/api/status")(func(w http.ResponseWriter, r *http.Request) { called = true })
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if !called {
		t.Error("handler should be called")
	}
}

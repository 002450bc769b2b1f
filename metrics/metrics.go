// ABOUTME: Prometheus collectors for proxy traffic, upstream calls and token cache
// ABOUTME: Uses a private registry so multiple instances can coexist in tests

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the proxy's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	tokenFetches     *prometheus.CounterVec
	tokenCacheHits   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vip_proxy_requests_total",
				Help: "Total number of inbound proxy requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vip_proxy_request_duration_seconds",
				Help:    "Duration of inbound proxy requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		upstreamTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vip_proxy_upstream_requests_total",
				Help: "Total number of upstream calls by target and status",
			},
			[]string{"target", "status"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vip_proxy_upstream_duration_seconds",
				Help:    "Duration of upstream calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"target"},
		),
		tokenFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vip_proxy_ims_token_fetches_total",
				Help: "IMS client-credentials exchanges by environment and outcome",
			},
			[]string{"environment", "outcome"},
		),
		tokenCacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vip_proxy_token_cache_hits_total",
				Help: "Requests served with a cached IMS token",
			},
			[]string{"environment"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.upstreamTotal,
		m.upstreamDuration,
		m.tokenFetches,
		m.tokenCacheHits,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveUpstream records one upstream call. status 0 means no response was received.
func (m *Metrics) ObserveUpstream(target string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}
	m.upstreamTotal.WithLabelValues(target, label).Inc()
	m.upstreamDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (m *Metrics) TokenFetched(environment string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.tokenFetches.WithLabelValues(environment, outcome).Inc()
}

func (m *Metrics) TokenCacheHit(environment string) {
	if m == nil {
		return
	}
	m.tokenCacheHits.WithLabelValues(environment).Inc()
}

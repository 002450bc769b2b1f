// ABOUTME: Shared upstream round-trip for Adobe and devs.ai calls
// ABOUTME: Executes the request, records metrics, logs failures and normalizes the body

package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/markalston/vip-marketplace-proxy/metrics"
)

// maxUpstreamBody bounds how much of an upstream response is buffered.
const maxUpstreamBody = 20 << 20

// UpstreamResponse is an upstream answer ready to relay: the original status
// and a body that is guaranteed to be JSON.
type UpstreamResponse struct {
	StatusCode int
	Body       json.RawMessage
}

// OK reports whether the upstream answered with a 2xx status.
func (r *UpstreamResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type upstream struct {
	client  *http.Client
	metrics *metrics.Metrics
}

// roundTrip sends req and relays whatever status the upstream chose. Only
// transport failures are returned as errors.
func (u *upstream) roundTrip(req *http.Request, target string) (*UpstreamResponse, error) {
	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		u.metrics.ObserveUpstream(target, 0, time.Since(start))
		slog.Error("Upstream request failed", "target", target, "url", req.URL.Redacted(), "error", err)
		return nil, upstreamError(target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	u.metrics.ObserveUpstream(target, resp.StatusCode, time.Since(start))
	if err != nil {
		slog.Error("Failed to read upstream response", "target", target, "status", resp.StatusCode, "error", err)
		return nil, upstreamError(target, fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("Upstream returned error status",
			"target", target,
			"method", req.Method,
			"endpoint", req.URL.Path,
			"status", resp.StatusCode,
			"body", truncate(string(raw), maxLoggedBody),
		)
	} else {
		slog.Debug("Upstream request completed",
			"target", target,
			"endpoint", req.URL.Path,
			"status", resp.StatusCode,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}

	return &UpstreamResponse{
		StatusCode: resp.StatusCode,
		Body:       NormalizeBody(resp.StatusCode, raw),
	}, nil
}

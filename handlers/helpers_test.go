// ABOUTME: Test fixtures for handler tests
// ABOUTME: Fake IMS, Adobe and devs.ai servers behind a fully wired router

package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/markalston/vip-marketplace-proxy/cache"
	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/metrics"
	"github.com/markalston/vip-marketplace-proxy/services"
)

type recordedRequest struct {
	Method   string
	Path     string // escaped
	RawQuery string
	Header   http.Header
	Body     []byte
}

func (r recordedRequest) JSON(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(r.Body, &m), "body: %s", r.Body)
	return m
}

// fakeUpstream records every request and answers with a canned response.
type fakeUpstream struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
	delay    time.Duration
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{status: http.StatusOK, body: `{"ok":true}`}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.EscapedPath(),
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		status, respBody, delay := f.status, f.body, f.delay
		f.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeUpstream) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakeUpstream) slow(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

func (f *fakeUpstream) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeUpstream) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "upstream received no requests")
	return f.requests[len(f.requests)-1]
}

// fakeIMS issues "<client_id>-token-<n>" tokens.
type fakeIMS struct {
	*httptest.Server
	calls  atomic.Int32
	status atomic.Int32 // non-zero forces an error
	delay  atomic.Int64 // nanoseconds to wait before answering
}

func newFakeIMS(t *testing.T) *fakeIMS {
	t.Helper()
	f := &fakeIMS{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := f.calls.Add(1)
		if d := time.Duration(f.delay.Load()); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if status := int(f.status.Load()); status != 0 {
			w.WriteHeader(status)
			io.WriteString(w, `{"error":"invalid_client","error_description":"invalid client_id parameter"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("%s-token-%d", r.PostForm.Get("client_id"), n),
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(f.Close)
	return f
}

type fixture struct {
	ims        *fakeIMS
	sandbox    *fakeUpstream
	production *fakeUpstream
	devs       *fakeUpstream
	server     *httptest.Server
}

type fixtureOptions struct {
	upstreamTimeout time.Duration
	sandboxNoCreds  bool
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, fixtureOptions{})
}

func newFixtureWith(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()
	if opts.upstreamTimeout == 0 {
		opts.upstreamTimeout = 5 * time.Second
	}

	f := &fixture{
		ims:        newFakeIMS(t),
		sandbox:    newFakeUpstream(t),
		production: newFakeUpstream(t),
		devs:       newFakeUpstream(t),
	}

	sandbox := &config.Environment{
		Name:         config.Sandbox,
		ClientID:     "sandbox-client",
		ClientSecret: "sandbox-secret",
		APIBaseURL:   f.sandbox.URL,
		IMSBaseURL:   f.ims.URL,
	}
	if opts.sandboxNoCreds {
		sandbox.ClientID, sandbox.ClientSecret = "", ""
	}
	production := &config.Environment{
		Name:         config.Production,
		ClientID:     "prod-client",
		ClientSecret: "prod-secret",
		APIBaseURL:   f.production.URL,
		IMSBaseURL:   f.ims.URL,
	}
	cfg := (&config.Config{Port: "3001", UpstreamTimeout: opts.upstreamTimeout}).WithEnvironments(sandbox, production)

	httpClient := &http.Client{Timeout: opts.upstreamTimeout}
	m := metrics.New()
	c := cache.New(time.Hour)
	t.Cleanup(c.Close)

	tokens := services.NewTokenProvider(services.NewMemoryTokenStore(c), httpClient, time.Minute, m)
	h := NewHandler(cfg, tokens,
		services.NewVIPClient(httpClient, tokens, m),
		services.NewDevsAIClient(f.devs.URL, httpClient, m),
	)
	h.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	f.server = httptest.NewServer(NewRouter(h, RouterOptions{Metrics: m}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

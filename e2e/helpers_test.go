// ABOUTME: Test helpers for e2e tests
// ABOUTME: Fake Adobe endpoints and a proxy wired from environment configuration

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/server"
)

// adobe fakes both IMS and the VIP Marketplace API on one server.
type adobe struct {
	*httptest.Server
	imsCalls atomic.Int32
	delay    atomic.Int64 // nanoseconds every answer waits

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func newAdobe(t *testing.T) *adobe {
	t.Helper()
	a := &adobe{}
	a.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if d := time.Duration(a.delay.Load()); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}

		if r.URL.Path == "/ims/token/v2" {
			n := a.imsCalls.Add(1)
			r.ParseForm()
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": fmt.Sprintf("%s-%d", r.PostForm.Get("client_id"), n),
				"token_type":   "bearer",
				"expires_in":   86399,
			})
			return
		}

		body, _ := io.ReadAll(r.Body)
		a.mu.Lock()
		a.requests = append(a.requests, r.Clone(context.Background()))
		a.bodies = append(a.bodies, body)
		a.mu.Unlock()

		if strings.HasPrefix(r.URL.Path, "/v3/customers/missing") {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"code":"1116","message":"Invalid Customer"}`)
			return
		}
		io.WriteString(w, `{"path":"`+r.URL.Path+`"}`)
	}))
	t.Cleanup(a.Close)
	return a
}

func (a *adobe) apiCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.requests)
}

func (a *adobe) lastRequest(t *testing.T) (*http.Request, []byte) {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.requests)
	return a.requests[len(a.requests)-1], a.bodies[len(a.bodies)-1]
}

// withAdobeEnv points each environment at its fake. Values in extra
// override the defaults below.
func withAdobeEnv(t *testing.T, sandbox, production *adobe, extra map[string]string) {
	t.Helper()

	vars := map[string]string{
		"ENV_FILE":                       filepath.Join(t.TempDir(), "absent.env"),
		"PORT":                           "3001",
		"ADOBE_ENVIRONMENTS":             "sandbox,production",
		"ADOBE_CLIENT_ID":                "sandbox-client",
		"ADOBE_CLIENT_SECRET":            "sandbox-secret",
		"ADOBE_API_URL":                  sandbox.URL,
		"ADOBE_IMS_URL":                  sandbox.URL,
		"ADOBE_PRODUCTION_CLIENT_ID":     "prod-client",
		"ADOBE_PRODUCTION_CLIENT_SECRET": "prod-secret",
		"ADOBE_PRODUCTION_API_URL":       production.URL,
		"ADOBE_PRODUCTION_IMS_URL":       production.URL,
		"ADOBE_ALL_PROXY":                "",
		"REDIS_URL":                      "",
		"CORS_ALLOWED_ORIGINS":           "",
		"RATE_LIMIT_ENABLED":             "false",
		"RATE_LIMIT_DEFAULT":             "",
		"METRICS_ENABLED":                "true",
		"UPSTREAM_TIMEOUT":               "5s",
		"TOKEN_REFRESH_MARGIN":           "",
		"DEVS_AI_URL":                    "",
	}
	for k, v := range extra {
		vars[k] = v
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

// startProxy serves a proxy configured from the process environment.
func startProxy(t *testing.T) *httptest.Server {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)

	proxy, err := server.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(proxy.Close)

	srv := httptest.NewUnstartedServer(proxy.Handler)
	srv.Config = server.NewHTTPServer(cfg, proxy.Handler)
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url, body string, header http.Header) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

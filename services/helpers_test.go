// ABOUTME: Test helpers for services tests
// ABOUTME: Fake IMS endpoint and environment fixtures

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/markalston/vip-marketplace-proxy/cache"
	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/models"
)

// fakeIMS issues sequential tokens ("token-1", "token-2", ...) and counts requests.
type fakeIMS struct {
	*httptest.Server
	calls     atomic.Int32
	expiresIn int
	status    int    // non-zero forces an error status
	body      string // error body when status is set
	delay     time.Duration
	release   chan struct{} // when non-nil, requests block until closed
	lastForm  atomic.Value  // url.Values
}

func newFakeIMS(t *testing.T) *fakeIMS {
	t.Helper()
	f := &fakeIMS{expiresIn: 3600}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := f.calls.Add(1)

		if r.URL.Path != "/ims/token/v2" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.lastForm.Store(r.PostForm)

		if f.release != nil {
			<-f.release
		}
		if f.delay > 0 {
			time.Sleep(f.delay)
		}

		w.Header().Set("Content-Type", "application/json")
		if f.status != 0 {
			w.WriteHeader(f.status)
			w.Write([]byte(f.body))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"token_type":   "bearer",
			"expires_in":   f.expiresIn,
		})
	}))
	t.Cleanup(f.Close)
	return f
}

func testEnvironment(name, imsURL, apiURL string) *config.Environment {
	return &config.Environment{
		Name:         name,
		ClientID:     name + "-client",
		ClientSecret: name + "-secret",
		IMSBaseURL:   imsURL,
		APIBaseURL:   apiURL,
	}
}

func newMemoryProvider(t *testing.T, margin time.Duration) *TokenProvider {
	t.Helper()
	c := cache.New(time.Hour)
	t.Cleanup(c.Close)
	return NewTokenProvider(NewMemoryTokenStore(c), &http.Client{Timeout: 5 * time.Second}, margin, nil)
}

// staticTokens is a TokenSource that always returns the same token.
type staticTokens struct {
	token string
	err   error
	calls atomic.Int32
}

func (s *staticTokens) Token(_ context.Context, _ *config.Environment) (*models.OAuthToken, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &models.OAuthToken{AccessToken: s.token, TokenType: "bearer", ExpiresIn: 3600, ObtainedAt: time.Now()}, nil
}

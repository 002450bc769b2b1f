// ABOUTME: Adobe VIP Marketplace API client used by the proxy routes
// ABOUTME: Attaches bearer token, API key and route headers to each forwarded call

package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/metrics"
	"github.com/markalston/vip-marketplace-proxy/models"
)

// TokenSource supplies bearer tokens for an environment.
type TokenSource interface {
	Token(ctx context.Context, env *config.Environment) (*models.OAuthToken, error)
}

// Call describes one upstream VIP Marketplace request.
type Call struct {
	Name    string // metrics/log label, e.g. "customer"
	Method  string
	Path    string // already escaped, e.g. /v3/customers/123
	Query   url.Values
	Body    []byte
	Headers http.Header
}

type VIPClient struct {
	upstream
	tokens TokenSource
}

func NewVIPClient(httpClient *http.Client, tokens TokenSource, m *metrics.Metrics) *VIPClient {
	return &VIPClient{
		upstream: upstream{client: httpClient, metrics: m},
		tokens:   tokens,
	}
}

// Do obtains a token for env and forwards call. A non-2xx upstream status is
// returned as a response, not an error.
func (c *VIPClient) Do(ctx context.Context, env *config.Environment, call Call) (*UpstreamResponse, error) {
	token, err := c.tokens.Token(ctx, env)
	if err != nil {
		return nil, err
	}

	target := env.APIURL(call.Path)
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", call.Name, err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", env.ClientID)
	for key, values := range call.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return c.roundTrip(req, "adobe:"+call.Name)
}

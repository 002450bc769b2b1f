// ABOUTME: devs.ai chat-completions relay
// ABOUTME: Forwards caller-supplied payloads using the caller's own API key

package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/markalston/vip-marketplace-proxy/metrics"
)

type DevsAIClient struct {
	upstream
	baseURL string
}

func NewDevsAIClient(baseURL string, httpClient *http.Client, m *metrics.Metrics) *DevsAIClient {
	return &DevsAIClient{
		upstream: upstream{client: httpClient, metrics: m},
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// ChatCompletion posts payload to /api/v1/chats/completions with apiKey in
// X-Authorization.
func (c *DevsAIClient) ChatCompletion(ctx context.Context, apiKey string, payload []byte) (*UpstreamResponse, error) {
	if apiKey == "" {
		return nil, Invalid("API key is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/chats/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create devs.ai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Authorization", "Bearer "+apiKey)

	return c.roundTrip(req, "devs.ai")
}

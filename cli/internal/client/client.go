// ABOUTME: HTTP client for the VIP Marketplace proxy API
// ABOUTME: Wraps proxy calls with error handling suited to CLI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one proxy instance, optionally pinned to an environment.
type Client struct {
	baseURL     string
	environment string
	httpClient  *http.Client
}

// New creates a client. An empty environment lets the proxy pick its default.
func New(baseURL, environment string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		environment: environment,
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
		},
	}
}

// Status is the GET /api/status response.
type Status struct {
	Status       string   `json:"status"`
	Message      string   `json:"message"`
	Timestamp    string   `json:"timestamp"`
	Port         string   `json:"port"`
	Environments []string `json:"environments"`
}

// Token is the POST /api/adobe/authenticate response.
type Token struct {
	JWT         *string `json:"jwt"`
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int64   `json:"expires_in"`
}

// APIError is a non-2xx answer from the proxy or from Adobe behind it.
type APIError struct {
	StatusCode int
	Message    string
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("proxy returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("proxy returned %d", e.StatusCode)
}

// IsAPIError reports whether err came back from the proxy rather than from
// the connection.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Status calls GET /api/status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/status", nil, nil)
	if err != nil {
		return nil, err
	}
	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("invalid response from proxy: %w", err)
	}
	return &status, nil
}

// Authenticate calls POST /api/adobe/authenticate.
func (c *Client) Authenticate(ctx context.Context) (*Token, error) {
	body := map[string]string{}
	if c.environment != "" {
		body["environment"] = c.environment
	}
	data, err := c.do(ctx, http.MethodPost, "/api/adobe/authenticate", nil, body)
	if err != nil {
		return nil, err
	}
	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid response from proxy: %w", err)
	}
	return &token, nil
}

// InvalidateToken calls DELETE /api/adobe/token.
func (c *Client) InvalidateToken(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/adobe/token", nil, nil)
	return err
}

// Healthcheck calls the VIP Marketplace health check through the proxy.
func (c *Client) Healthcheck(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/adobe/proxy/v3/healthcheck", nil, nil)
}

// Customer fetches one customer account.
func (c *Client) Customer(ctx context.Context, customerID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/adobe/proxy/v3/customers/"+url.PathEscape(customerID), nil, nil)
}

// Subscriptions lists a customer's subscriptions.
func (c *Client) Subscriptions(ctx context.Context, customerID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/adobe/proxy/v3/customers/"+url.PathEscape(customerID)+"/subscriptions", nil, nil)
}

// FlexDiscounts lists flexible discounts matching query.
func (c *Client) FlexDiscounts(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/adobe/proxy/v3/flex-discounts", query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if c.environment != "" && method != http.MethodPost {
		q.Set("environment", c.environment)
	}
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to proxy at %s: %w", c.baseURL, err)
}

// handleErrorResponse extracts a message from {"error"} or Adobe's {"message"}.
func handleErrorResponse(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}
	if json.Valid(data) {
		apiErr.Body = data
	}

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		switch {
		case envelope.Error != "" && envelope.Details != "":
			apiErr.Message = envelope.Error + ": " + envelope.Details
		case envelope.Error != "":
			apiErr.Message = envelope.Error
		default:
			apiErr.Message = envelope.Message
		}
	}
	return apiErr
}

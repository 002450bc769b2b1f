// ABOUTME: Response bodies produced by the proxy itself
// ABOUTME: Upstream responses are relayed as raw JSON and never modeled here

package models

// ErrorResponse is the uniform error envelope. Every failure answered by the
// proxy carries an "error" key.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Status       string   `json:"status"`
	Message      string   `json:"message"`
	Timestamp    string   `json:"timestamp"`
	Port         string   `json:"port"`
	Environments []string `json:"environments"`
}

// AuthenticateResponse is returned by POST /api/adobe/authenticate.
// JWT is always null; the proxy uses the OAuth client-credentials flow.
type AuthenticateResponse struct {
	JWT         *string `json:"jwt"`
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int64   `json:"expires_in"`
}

// ABOUTME: OAuth token obtained from Adobe IMS
// ABOUTME: Tracks issuance time so callers can decide when to refresh

package models

import "time"

// OAuthToken is a bearer token from the IMS client-credentials exchange.
type OAuthToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"` // seconds, as issued
	ObtainedAt  time.Time `json:"obtained_at"`
}

// ExpiresAt is the instant IMS stops accepting the token.
func (t *OAuthToken) ExpiresAt() time.Time {
	return t.ObtainedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// UsableAt reports whether the token can still be sent at now, keeping
// margin in reserve for the request to reach Adobe.
func (t *OAuthToken) UsableAt(now time.Time, margin time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return now.Before(t.ExpiresAt().Add(-margin))
}

// RemainingSeconds is the lifetime left at now, floored at zero.
func (t *OAuthToken) RemainingSeconds(now time.Time) int64 {
	left := int64(t.ExpiresAt().Sub(now) / time.Second)
	if left < 0 {
		return 0
	}
	return left
}

// ABOUTME: Error taxonomy for the proxy's upstream and validation failures
// ABOUTME: Handlers map these to HTTP status codes with errors.As / errors.Is

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrUpstreamTimeout is matched by errors.Is when an upstream call exceeded
// its deadline.
var ErrUpstreamTimeout = errors.New("upstream request timed out")

// ErrCredentialsMissing means the selected environment has no client credentials.
var ErrCredentialsMissing = errors.New("environment has no client credentials configured")

// ValidationError is a caller mistake: missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid returns a *ValidationError with a formatted message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamAuthError is a non-2xx answer from the IMS token endpoint.
type UpstreamAuthError struct {
	Environment string
	StatusCode  int
	Body        string
}

func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("IMS token request for %s failed (status %d): %s", e.Environment, e.StatusCode, truncate(e.Body, maxLoggedBody))
}

// upstreamError classifies a transport failure, marking deadline overruns
// with ErrUpstreamTimeout.
func upstreamError(target string, err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %s: %v", ErrUpstreamTimeout, target, err)
	}
	return fmt.Errorf("%s request failed: %w", target, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

const maxLoggedBody = 512

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

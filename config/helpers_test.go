// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"testing"
)

// withCleanAdobeEnv clears the environment, sets sandbox and production
// credentials to test values, and returns a cleanup function that restores
// the original env. Use with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withCleanAdobeEnv(t, nil))
//	}
func withCleanAdobeEnv(t *testing.T, extra map[string]string) func() {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()

	// Keep Load from picking up a developer's .env
	os.Setenv("ENV_FILE", "testdata/does-not-exist.env")

	os.Setenv("ADOBE_CLIENT_ID", "sandbox-client")
	os.Setenv("ADOBE_CLIENT_SECRET", "sandbox-secret")
	os.Setenv("ADOBE_PRODUCTION_CLIENT_ID", "prod-client")
	os.Setenv("ADOBE_PRODUCTION_CLIENT_SECRET", "prod-secret")

	for key, value := range extra {
		if value == "" {
			os.Unsetenv(key)
			continue
		}
		os.Setenv(key, value)
	}

	return func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i := 0; i < len(env); i++ {
				if env[i] == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}
}

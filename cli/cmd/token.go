// ABOUTME: Token command for vipctl
// ABOUTME: Requests or invalidates the proxy's cached Adobe IMS token

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/markalston/vip-marketplace-proxy/cli/internal/client"
	"github.com/markalston/vip-marketplace-proxy/cli/internal/styles"
	"github.com/spf13/cobra"
)

var invalidateToken bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Obtain an Adobe IMS token through the proxy",
	Long: `Ask the proxy for the current Adobe IMS access token of an environment.

The token is masked in human-readable output; use --json to print it in full.
With --invalidate the proxy drops its cached token instead.`,
	Args: cobra.NoArgs,
	Run: runWithSignals(func(ctx context.Context, w io.Writer, _ []string) int {
		if invalidateToken {
			return runTokenInvalidate(ctx, w)
		}
		return runToken(ctx, w)
	}),
}

func init() {
	tokenCmd.Flags().BoolVar(&invalidateToken, "invalidate", false, "Drop the cached token instead of fetching one")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(ctx context.Context, w io.Writer) int {
	token, err := newClient().Authenticate(ctx)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, token)
	}
	fmt.Fprintln(w, formatTokenHuman(token))
	return exitOK
}

func runTokenInvalidate(ctx context.Context, w io.Writer) int {
	if err := newClient().InvalidateToken(ctx); err != nil {
		return reportError(w, err)
	}
	env := GetEnvironment()
	if env == "" {
		env = "default"
	}
	fmt.Fprintf(w, "Token for %s environment invalidated\n", env)
	return exitOK
}

func formatTokenHuman(token *client.Token) string {
	lines := []string{
		styles.Field("Token", 11, maskToken(token.AccessToken)),
		styles.Field("Type", 11, token.TokenType),
		styles.Field("Expires in", 11, fmt.Sprintf("%ds", token.ExpiresIn)),
	}
	return strings.Join(lines, "\n")
}

// maskToken keeps the first and last four characters.
func maskToken(s string) string {
	if len(s) <= 12 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", 8) + s[len(s)-4:]
}

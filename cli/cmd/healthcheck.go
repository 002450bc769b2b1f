// ABOUTME: Healthcheck command for vipctl
// ABOUTME: Runs the VIP Marketplace health check through the proxy

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/markalston/vip-marketplace-proxy/cli/internal/styles"
	"github.com/spf13/cobra"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check VIP Marketplace reachability",
	Long:  `Call the Adobe VIP Marketplace health check through the proxy. This exercises IMS authentication end to end.`,
	Args:  cobra.NoArgs,
	Run: runWithSignals(func(ctx context.Context, w io.Writer, _ []string) int {
		return runHealthcheck(ctx, w)
	}),
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}

func runHealthcheck(ctx context.Context, w io.Writer) int {
	data, err := newClient().Healthcheck(ctx)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		writeRaw(w, data)
		return exitOK
	}
	fmt.Fprintln(w, styles.Field("VIP Marketplace", 16, styles.StatusOK.Render("reachable")))
	return exitOK
}

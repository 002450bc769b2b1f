// ABOUTME: Status command for vipctl
// ABOUTME: Checks proxy reachability and lists configured environments

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/markalston/vip-marketplace-proxy/cli/internal/client"
	"github.com/markalston/vip-marketplace-proxy/cli/internal/styles"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check proxy connectivity",
	Long:  `Check that the VIP Marketplace proxy is running and list the Adobe environments it serves.`,
	Args:  cobra.NoArgs,
	Run: runWithSignals(func(ctx context.Context, w io.Writer, _ []string) int {
		return runStatus(ctx, w)
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// runStatus executes the status check and returns exit code
func runStatus(ctx context.Context, w io.Writer) int {
	url := GetAPIURL()
	resp, err := newClient().Status(ctx)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(url, resp))
	} else {
		fmt.Fprintln(w, formatStatusHuman(url, resp))
	}
	return exitOK
}

func formatStatusHuman(url string, resp *client.Status) string {
	state := styles.StatusOK.Render(resp.Status)
	if resp.Status != "ok" {
		state = styles.StatusWarning.Render(resp.Status)
	}
	lines := []string{
		styles.Field("Proxy", 13, url),
		styles.Field("Status", 13, state),
		styles.Field("Environments", 13, strings.Join(resp.Environments, ", ")),
		styles.Field("Timestamp", 13, resp.Timestamp),
	}
	return strings.Join(lines, "\n")
}

func formatStatusJSON(url string, resp *client.Status) string {
	output := map[string]any{
		"proxy":        url,
		"status":       resp.Status,
		"message":      resp.Message,
		"environments": resp.Environments,
		"timestamp":    resp.Timestamp,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}

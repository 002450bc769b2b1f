// ABOUTME: Shared output helpers for vipctl commands
// ABOUTME: Maps client errors to exit codes and pretty-prints JSON payloads

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/markalston/vip-marketplace-proxy/cli/internal/client"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	exitOK       = 0
	exitAPIError = 1
	exitConnErr  = 2
)

func newClient() *client.Client {
	return client.New(GetAPIURL(), GetEnvironment())
}

// reportError prints err and returns the matching exit code.
func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	if client.IsAPIError(err) {
		return exitAPIError
	}
	return exitConnErr
}

// writeJSON prints v indented and returns the exit code.
func writeJSON(w io.Writer, v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "Error: encoding output: %v\n", err)
		return exitAPIError
	}
	fmt.Fprintln(w, string(data))
	return exitOK
}

// writeRaw indents a JSON payload from the proxy.
func writeRaw(w io.Writer, data json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		fmt.Fprintln(w, string(data))
		return
	}
	fmt.Fprintln(w, buf.String())
}

// runWithSignals adapts a runX function to a cobra Run func.
func runWithSignals(fn func(ctx context.Context, w io.Writer, args []string) int) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := fn(ctx, os.Stdout, args)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}
}

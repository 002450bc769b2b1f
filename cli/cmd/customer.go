// ABOUTME: Customer and subscription lookup commands for vipctl
// ABOUTME: Prints the VIP Marketplace payloads returned by the proxy

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

var customerCmd = &cobra.Command{
	Use:   "customer <customer-id>",
	Short: "Show a customer account",
	Args:  cobra.ExactArgs(1),
	Run: runWithSignals(func(ctx context.Context, w io.Writer, args []string) int {
		return runCustomer(ctx, w, args[0])
	}),
}

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions <customer-id>",
	Short: "List a customer's subscriptions",
	Args:  cobra.ExactArgs(1),
	Run: runWithSignals(func(ctx context.Context, w io.Writer, args []string) int {
		return runSubscriptions(ctx, w, args[0])
	}),
}

func init() {
	rootCmd.AddCommand(customerCmd)
	rootCmd.AddCommand(subscriptionsCmd)
}

func runCustomer(ctx context.Context, w io.Writer, customerID string) int {
	data, err := newClient().Customer(ctx, customerID)
	if err != nil {
		return reportError(w, err)
	}
	writeRaw(w, data)
	return exitOK
}

func runSubscriptions(ctx context.Context, w io.Writer, customerID string) int {
	data, err := newClient().Subscriptions(ctx, customerID)
	if err != nil {
		return reportError(w, err)
	}
	writeRaw(w, data)
	return exitOK
}

// ABOUTME: Entry point for the vipctl CLI
// ABOUTME: Command-line client for the VIP Marketplace proxy

package main

import (
	"fmt"
	"os"

	"github.com/markalston/vip-marketplace-proxy/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

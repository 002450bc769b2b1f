// ABOUTME: Root command for the vipctl CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL      string
	environment string
	jsonOutput  bool
)

const defaultAPIURL = "http://localhost:3001"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "vipctl",
	Short: "CLI for the VIP Marketplace proxy",
	Long: `vipctl is a command-line client for the VIP Marketplace proxy.

It checks proxy and Adobe connectivity and looks up customers, subscriptions
and flexible discounts from scripts and CI jobs.

Environment Variables:
  VIPCTL_API_URL      Proxy URL (default: http://localhost:3001)
  VIPCTL_ENVIRONMENT  Adobe environment to target (default: proxy default)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Proxy URL (overrides VIPCTL_API_URL)")
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "Adobe environment: sandbox or production (overrides VIPCTL_ENVIRONMENT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("VIPCTL_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

// GetEnvironment returns the environment from flag or env. Empty means the
// proxy decides.
func GetEnvironment() string {
	if environment != "" {
		return environment
	}
	return os.Getenv("VIPCTL_ENVIRONMENT")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

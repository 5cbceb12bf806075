package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wxgate",
	Short: "WeChat official-account webhook gateway",
	Long: `wxgate receives WeChat official-account callback messages, verifies
their signatures, decodes the XML envelopes, and renders reply envelopes.

Quick start:
  wxgate serve      # Start the webhook server
  wxgate validate   # Validate configuration

Utilities:
  wxgate sign       # Compute a callback signature for testing
  wxgate decode     # Decode an XML envelope from stdin`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "wxgate.yaml", "config file path")
}

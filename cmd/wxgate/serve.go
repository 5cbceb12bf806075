package main

import (
	"fmt"
	"os"

	"github.com/artpar/wxgate/bootstrap"
	"github.com/artpar/wxgate/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long: `Start the wxgate webhook server.

The server will:
  - Load configuration from wxgate.yaml (or --config)
  - Or load configuration from WXGATE_* environment variables
  - Answer the platform's endpoint-verification handshake
  - Verify callback signatures, decode messages, and render replies

Environment variables (for Docker deployments):
  WXGATE_WECHAT_TOKEN       - Callback signature token (required)
  WXGATE_WECHAT_APP_ID      - Official account app id
  WXGATE_CALLBACK_PATH      - Callback path (default: /wechat)
  WXGATE_SERVER_PORT        - Server port (default: 8080)
  WXGATE_SESSION_STORE      - Session store: memory or sqlite
  WXGATE_LOG_LEVEL          - Log level: debug, info, warn, error

Examples:
  wxgate serve
  wxgate serve --config /etc/wxgate/config.yaml

  # Docker (env vars only):
  WXGATE_WECHAT_TOKEN=secret wxgate serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	if !hasConfigFile && !config.HasEnvConfig() {
		fmt.Println("No configuration found.")
		fmt.Println()
		fmt.Printf("Option 1: Create %s with at least a wechat.token entry\n", cfgFile)
		fmt.Println("Option 2: Set WXGATE_WECHAT_TOKEN environment variable")
		fmt.Println()
		fmt.Println("Example (env vars):")
		fmt.Println("  WXGATE_WECHAT_TOKEN=secret wxgate serve")
		return nil
	}

	if !hasConfigFile {
		fmt.Println("Running with environment variables (no config file)")
	}

	app, err := bootstrap.New(cfgFile, bootstrap.Options{})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}

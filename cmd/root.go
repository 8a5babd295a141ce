// Package cmd contains the chatpanel command line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"chatpanel/config"
)

var rootCmd = &cobra.Command{
	Use:   "chatpanel",
	Short: "Browser-panel chat client for Azure OpenAI deployments",
	Long: `chatpanel serves a small chat panel in your browser and relays each
message to an Azure OpenAI chat-completion deployment.

Run "chatpanel onboard" once to configure the endpoint, API key, and
deployment name, then "chatpanel chat" to open a panel.`,
	SilenceUsage: true,
}

var configDirFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Override the config directory (default ~/.chatpanel)")
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		config.SetConfigDir(configDirFlag)
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

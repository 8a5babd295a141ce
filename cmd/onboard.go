package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"chatpanel/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize the chatpanel configuration",
	Long:  `Interactively create the chatpanel config file with your Azure OpenAI settings.`,
	RunE:  runOnboard,
}

func init() {
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(_ *cobra.Command, _ []string) error {
	configPath, err := config.Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err == nil {
		fmt.Println("Config already exists at:", configPath)
		fmt.Println("To reconfigure, edit the file directly or delete it first.")
		return nil
	}

	cfg := config.DefaultConfig()

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Azure OpenAI endpoint").
				Description("Your resource URL, e.g. "+config.DefaultEndpoint).
				Placeholder(config.DefaultEndpoint).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("endpoint is required")
					}
					return nil
				}).
				Value(&cfg.Azure.Endpoint),
			huh.NewInput().
				Title("API key").
				Description("Find it under Keys and Endpoint in the Azure portal.").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("API key is required")
					}
					return nil
				}).
				Value(&cfg.Azure.APIKey),
			huh.NewInput().
				Title("Deployment name").
				Description("The model deployment that should answer requests.").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("deployment name is required")
					}
					return nil
				}).
				Value(&cfg.Azure.DeploymentName),
			huh.NewInput().
				Title("API version").
				Description("Leave as is unless your resource needs a different version.").
				Value(&cfg.Azure.APIVersion),
		),
	).Run()
	if err != nil {
		return err
	}

	// Endpoint concatenation assumes a trailing slash.
	if !strings.HasSuffix(cfg.Azure.Endpoint, "/") {
		cfg.Azure.Endpoint += "/"
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println("Config written to:", configPath)
	fmt.Println("Start chatting with: chatpanel chat")
	return nil
}

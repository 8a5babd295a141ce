// chatpanel is a small browser-panel chat client for Azure OpenAI deployments.
package main

import (
	"fmt"
	"os"

	"chatpanel/cmd"
	"chatpanel/config"
	"chatpanel/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	configDir, _ := config.Dir()
	if err := logger.Init(cfg.BuildLoggerConfig(), configDir); err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
	}
	cmd.Execute()
}

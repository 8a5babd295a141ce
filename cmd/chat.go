package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"chatpanel/completion"
	"chatpanel/config"
	"chatpanel/logger"
	"chatpanel/panel"
	"chatpanel/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open a chat panel in the browser",
	Long: `Open a chat panel served on a local address. Each message you send is
forwarded to the configured Azure OpenAI deployment and the reply appears in
the panel. Every invocation is an independent panel with its own
configuration snapshot; edit settings and re-run to pick up changes.`,
	RunE: runChat,
}

var (
	chatAddr   string
	chatNoOpen bool
)

func init() {
	chatCmd.Flags().StringVar(&chatAddr, "addr", "", "Listen address for the panel (default from config)")
	chatCmd.Flags().BoolVar(&chatNoOpen, "no-open", false, "Do not open the browser automatically")
	rootCmd.AddCommand(chatCmd)
}

// notify surfaces a host-level message to the user on stderr. The panel
// itself never receives error events.
func notify(msg string) {
	fmt.Fprintln(os.Stderr, "chatpanel:", msg)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Validation happens before any panel exists; a bad config aborts the
	// whole invocation.
	if err := cfg.Validate(); err != nil {
		notify(err.Error())
		logger.Error("configuration invalid", "err", err)
		return err
	}

	addr := cfg.Panel.Addr
	if flagAddr := strings.TrimSpace(chatAddr); flagAddr != "" {
		addr = flagAddr
	}

	client := completion.NewClient(cfg.Azure)
	p := panel.New(panel.Config{Addr: addr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	if err := p.Start(ctx); err != nil {
		notify(err.Error())
		return err
	}

	fmt.Println("chat panel:", p.URL())
	fmt.Println("Press Ctrl+C to stop.")

	if cfg.OpenBrowser() && !chatNoOpen {
		if err := openBrowser(p.URL()); err != nil {
			logger.Warn("could not open browser", "err", err)
		}
	}

	controller := session.New(p, client, notify)
	controller.Run(ctx)

	if err := p.Stop(); err != nil {
		logger.Error("error stopping panel", "err", err)
	}
	logger.Info("chat session ended")
	return nil
}

// openBrowser launches the default browser for the given URL, best effort.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// Command kioskctl exercises the kiosk services from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/museumai/kiosk/backend/internal/config"
	"github.com/museumai/kiosk/backend/internal/logging"
)

var verbose bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kioskctl",
		Short:         "Exercise the museum kiosk chat and speech services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logs")

	root.AddCommand(voicesCmd(), sayCmd(), transcribeCmd(), chatCmd())
	return root
}

// loadConfig reads .env and the environment, and sets up console logging.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	if _, err := logging.Setup(level, "console", os.Stderr); err != nil {
		return nil, err
	}
	return cfg, nil
}

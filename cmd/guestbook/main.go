// Command guestbook runs the guestbook API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/deppfellow/guestbook/internal/config"
	"github.com/deppfellow/guestbook/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "guestbook",
		Short:        "Guestbook API server",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newHashidCmd())
	return root
}

// bootstrap loads config and builds the logger shared by every command.
// The returned LoggerService must be shut down by the caller.
func bootstrap() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, &log, loggerService, nil
}

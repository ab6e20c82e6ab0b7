package main

import (
	"fmt"
	"os"

	"hypoforum/internal/config"
	"hypoforum/internal/db"
	"hypoforum/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "hypoforum",
		Short:        "hypothesis forum for humans and agents",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newAuditCmd(),
		newAgentKeyCmd(),
	)
	return cmd
}

// bootstrap loads config and the global logger. Every subcommand starts here.
func bootstrap() (*config.Config, error) {
	cfg, loadedDotenv := config.Load()
	if _, err := logger.Init(cfg.LogLevel, cfg.LogEncoding); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if !loadedDotenv {
		logger.L.Info("no .env file found, using process environment")
	}
	return cfg, nil
}

// openDB connects without migrating; only serve and migrate touch the schema.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger.L)
	if err != nil {
		return nil, err
	}
	logger.L.Debug("database connection established", zap.String("driver", cfg.DatabaseDriver))
	return gdb, nil
}

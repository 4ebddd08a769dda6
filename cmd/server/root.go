package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/coban-api/internal/config"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

// cli holds what every subcommand needs once the root has loaded it.
type cli struct {
	envFile    string
	configFile string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "coban-server",
		Short:         "Kanji and vocabulary mastery scoring API",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to read before the environment")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "optional YAML, TOML or JSON config file")

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newCheckStoreCmd(c),
	)
	return root
}

// load reads configuration and sets up logging.
func (c *cli) load() error {
	cfg, err := config.LoadWithOptions(config.Options{EnvFile: c.envFile, ConfigFile: c.configFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("store_driver", cfg.Store.Driver))

	c.cfg = cfg
	c.logger = l
	return nil
}

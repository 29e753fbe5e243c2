package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/farellandr/eventhub/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Global flags
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "eventhub",
	Short: "EventHub - event management REST backend",
	Long: `EventHub serves users, events, tickets and feedback over a JWT-protected
REST API backed by PostgreSQL.

Configuration is read from an optional YAML file, then from the environment
(a .env file is loaded first when present).`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// underscoreFlags accepts --env_file as an alias of --env-file.
func underscoreFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(underscoreFlags)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file")
}

// loadConfig reads the configuration and builds the process logger from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	config.LoadEnv(envFile)
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(os.Stdout, cfg.GinMode, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/farellandr/eventhub/config"
	"github.com/farellandr/eventhub/internal/handlers"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/farellandr/eventhub/internal/server"
	"github.com/spf13/cobra"
)

var (
	// Serve flags
	useMemory   bool
	skipMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

Examples:
  eventhub serve                       # Serve against PostgreSQL
  eventhub serve --memory              # Serve from an in-memory store
  eventhub serve --config eventhub.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&useMemory, "memory", false, "Use an in-memory store instead of PostgreSQL")
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema on startup")
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		store  repositories.Store
		pinger handlers.Pinger
	)
	if useMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		store = repositories.NewMemoryStore()
	} else {
		db, err := config.InitDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer config.CloseDatabase(db)

		if !skipMigrate {
			if err := config.Migrate(db); err != nil {
				return err
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		store = repositories.NewGormStore(db, logger)
		pinger = sqlDB
	}

	srv, err := server.New(cfg, store, pinger, logger)
	if err != nil {
		return err
	}
	if err := srv.SeedAdmin(ctx); err != nil {
		return err
	}
	return srv.Run(ctx)
}

package commands

import (
	"github.com/farellandr/eventhub/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := config.InitDatabase(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer config.CloseDatabase(db)

		if err := config.Migrate(db); err != nil {
			return err
		}
		logger.Info("schema migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

package commands

import (
	"errors"

	"github.com/farellandr/eventhub/config"
	"github.com/farellandr/eventhub/internal/auth"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/spf13/cobra"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the bootstrap administrator",
	Long: `Create the administrator described by ADMIN_USERNAME, ADMIN_EMAIL and
ADMIN_PASSWORD. An existing user of that name is granted ROLE_ADMIN instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Admin.Password == "" {
			return errors.New("ADMIN_PASSWORD is not set")
		}

		db, err := config.InitDatabase(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer config.CloseDatabase(db)

		hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
		if err != nil {
			return err
		}
		// Photo storage is not touched while seeding.
		users := services.NewUserService(repositories.NewGormStore(db, logger), hasher, nil, logger)
		created, err := users.EnsureAdmin(cmd.Context(), services.AdminInput{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
		if err != nil {
			return err
		}
		if !created {
			logger.Info("admin role granted to existing user", "username", cfg.Admin.Username)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedAdminCmd)
}

package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/farellandr/eventhub/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(ctx context.Context, cfg DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}
	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("connected to database", "host", cfg.Host, "name", cfg.Name)
	return db, nil
}

// Migrate creates or updates every table. The participant join table is
// registered first so the composite key on event_participants is used.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Event{}, "Participants", &models.EventParticipant{}); err != nil {
		return fmt.Errorf("setup participants join table: %w", err)
	}
	err := db.AutoMigrate(
		&models.UserPhoto{},
		&models.User{},
		&models.Role{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Ticket{},
		&models.Feedback{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

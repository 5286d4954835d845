package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dialector picks the GORM driver for the configured database.
func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return sqlite.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenDatabase connects to the configured database, applies the pool settings
// and runs the migrations.
func OpenDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables and seeds the initial availability row.
func Migrate(db *gorm.DB) error {
	log.Println("INFO: Running database migrations...")
	if err := db.AutoMigrate(
		&models.AvailabilityStatus{},
		&models.PendingVisitor{},
		&models.ChatMessage{},
		&models.VisitLog{},
		&models.GuestbookEntry{},
		&models.GameRequest{},
		&models.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	var count int64
	if err := db.Model(&models.AvailabilityStatus{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		def := models.DefaultStatus()
		if err := db.Create(&def).Error; err != nil {
			return fmt.Errorf("failed to seed availability: %w", err)
		}
	}
	log.Println("INFO: Database initialization complete.")
	return nil
}

// Ping checks that the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

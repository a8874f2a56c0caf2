package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bibliogenius/bibliogenius-sub000/internal/config"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

// ConnectDB opens the catalog store and brings the schema up to date.
func ConnectDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}

// Migrate creates or updates the schema for every aggregate. FK constraints
// come from the model associations; the store rejects rows whose foreign
// keys do not resolve.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Library{},
		&models.Book{},
		&models.Copy{},
		&models.Contact{},
		&models.Loan{},
		&models.Peer{},
		&models.PeerBook{},
		&models.BorrowRequest{},
		&models.OutgoingBorrowRequest{},
	)
}

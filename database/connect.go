// file: database/connect.go
package database

import (
	"fmt"
	"log/slog"

	"github.com/assessment-hisan/auction-backend/config"
	"github.com/assessment-hisan/auction-backend/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormConfig is shared by production and tests. Foreign key constraints stay
// off: students and teams only hold weak references to each other, and a
// team delete must be able to succeed before its students are cleared.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	}
}

func Connect(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	// Recycle connections before MySQL's wait_timeout closes them server-side.
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	log.Info("database connection established",
		"max_idle_conns", cfg.MaxIdleConns,
		"max_open_conns", cfg.MaxOpenConns)
	return db, nil
}

// MigrateTables creates or updates the three auction tables.
func MigrateTables(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Student{}, &models.Team{}, &models.TvDisplaySettings{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

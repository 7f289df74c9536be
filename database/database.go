package database

import (
	"fmt"

	"github.com/yeremiapane/dinecommand/config"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the guest/staff directory database for the configured driver.
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// AutoMigrate -> buat/sesuaikan tabel directory (guests, staff)
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Guest{}, &models.Staff{}); err != nil {
		return fmt.Errorf("auto migrate directory: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

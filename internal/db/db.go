package db

import (
	"ledger_service/internal/config" // Application configuration
	"ledger_service/internal/domain" // Importing domain models

	"github.com/glebarez/sqlite" // Pure-Go SQLite driver for GORM
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Open connects to the store selected by the configuration: a server-backed
// MySQL database or a local file-backed SQLite database
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "mysql" {
		// Data Source Name (DSN) for the MySQL connection
		dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}
	// Default: local SQLite file
	return gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return db.AutoMigrate(&domain.User{}, &domain.Transaction{})
}

package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"video-sharing/pkg/models"
)

// Open connects to a relational store ("sqlite3" or "postgres") and
// migrates the schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		// every new connection to ":memory:" is a fresh database
		db.DB().SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Video{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

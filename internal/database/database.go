package database

import (
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tech2gether/internal/config"
)

func Connect(c *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	log.Debug("GORM connected to database")

	return db, nil
}

// Migrate creates or updates the schema for all models. The test suite runs
// it against an in-memory store as well.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Credential{})
}

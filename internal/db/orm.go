package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	gormModels "github.com/jorgecardleitao/private-jets/internal/models/gorm"
)

var PgDB *gorm.DB

// InitPostgresORM connects GORM to the relational mirror and migrates the
// leg and aircraft tables.
func InitPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(&gormModels.Leg{}, &gormModels.Aircraft{}); err != nil {
		return nil, fmt.Errorf("failed to migrate relational mirror: %w", err)
	}

	PgDB = db
	log.Println("Connected to Postgres via GORM")
	return db, nil
}

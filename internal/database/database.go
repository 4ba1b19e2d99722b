package database

import (
	"log"

	"github.com/relieflink/disaster-response-api/internal/config"
	"github.com/relieflink/disaster-response-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

func Connect(cfg *config.Config) (*DB, error) {
	logLevel := logger.Silent
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	// Register metrics plugin for Prometheus
	if err := db.Use(&MetricsPlugin{}); err != nil {
		log.Printf("Failed to register metrics plugin: %v", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(300)
	}

	return &DB{db}, nil
}

// Migrate runs AutoMigrate for all models
func Migrate(db *DB) error {
	return db.AutoMigrate(
		&models.Disaster{},
		&models.Report{},
		&models.Resource{},
		&models.CacheEntry{},
	)
}

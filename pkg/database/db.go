package database

import (
	"log"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB   *gorm.DB
	once sync.Once
)

// Connect opens the shared postgres connection once per process.
func Connect(dsn string) *gorm.DB {
	once.Do(func() {
		db, err := Open(dsn)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		DB = db
	})

	return DB
}

// Open returns a fresh connection; tests and the CLI use it directly.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

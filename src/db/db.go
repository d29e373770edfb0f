package db

import (
	"context"
	"log"
	"sync"
	"vrs/src/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	db *gorm.DB
	mu sync.Mutex
)

func GetDb() *gorm.DB {
	mu.Lock()
	defer mu.Unlock()
	if db != nil {
		return db
	}
	_db, err := gorm.Open(postgres.Open(config.GetDSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Printf("Error connecting to database: %s\n", err.Error())
		panic(err)
	}
	sqlDB, err := _db.DB()
	if err != nil {
		log.Fatalf("Error establishing connection to database: %s\n", err.Error())
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	db = _db
	return _db
}

// WithContext returns the shared handle bound to ctx.
func WithContext(ctx context.Context) *gorm.DB {
	return GetDb().WithContext(ctx)
}

func NewDB(newdb *gorm.DB) {
	mu.Lock()
	defer mu.Unlock()
	db = newdb
}

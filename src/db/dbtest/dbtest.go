// Package dbtest opens throwaway sqlite databases migrated with the service models.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"vrs/src/db"
	"vrs/src/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates an in-memory database, migrates it and installs it as the shared handle.
// The handle is restored and closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %s", err.Error())
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %s", err.Error())
	}
	// a single connection serializes transactions the way row locks would
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %s", err.Error())
	}
	db.NewDB(gdb)
	t.Cleanup(func() {
		db.NewDB(nil)
		sqlDB.Close()
	})
	return gdb
}

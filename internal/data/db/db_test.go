package db

import (
	"path/filepath"
	"testing"

	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

func TestPostgresDSNDefaultsSSLMode(t *testing.T) {
	cfg := Config{
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresUser:     "app",
		PostgresPassword: "pw",
		PostgresName:     "pictures2pages",
	}
	want := "postgres://app:pw@db:5432/pictures2pages?sslmode=disable"
	if got := cfg.postgresDSN(); got != want {
		t.Fatalf("dsn: want=%q got=%q", want, got)
	}
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	theDB, err := Open(logger.Nop(), Config{Driver: DriverSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := AutoMigrateAll(theDB); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"user", "user_token", "image", "generated_content"} {
		if !theDB.Migrator().HasTable(table) {
			t.Fatalf("expected table %q to exist", table)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(logger.Nop(), Config{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

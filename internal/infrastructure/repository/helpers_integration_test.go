package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/db/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// the tables. Tests using it are skipped when the variable is unset.
func openTestDB(t *testing.T) (*gorm.DB, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	if err := migrations.Up(context.Background(), sqlDB); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cleanupSQL := `
    DELETE FROM user_roles;
    DELETE FROM users;
    DELETE FROM import_runs;
    `
	if err := db.Exec(cleanupSQL).Error; err != nil {
		t.Fatalf("failed cleanup: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		_ = sqlDB.Close()
	})

	return db, pool
}

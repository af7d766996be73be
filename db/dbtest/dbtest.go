// Package dbtest opens throwaway migrated sqlite databases for tests
package dbtest

import (
	"bitwise74/mailverify/config"
	"bitwise74/mailverify/db"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated sqlite database in t's temp dir, closed on cleanup.
// The file is created up front since db.New won't create it inside a
// container.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(dsn, nil, 0o600))

	conn, err := db.New(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    dsn,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return conn
}

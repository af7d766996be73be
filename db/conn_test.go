package db_test

import (
	"bitwise74/mailverify/config"
	"bitwise74/mailverify/db"
	"bitwise74/mailverify/db/dbtest"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefusesUnmountedSQLiteInDocker(t *testing.T) {
	db.SetRunningInDocker(t, true)

	_, err := db.New(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "missing.db"),
	})
	assert.ErrorContains(t, err, "not mounted")
}

func TestDBTestOpenInDocker(t *testing.T) {
	db.SetRunningInDocker(t, true)

	conn := dbtest.Open(t)

	var n int64
	require.NoError(t, conn.Table("users").Count(&n).Error)
	assert.Zero(t, n)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := db.New(context.Background(), config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

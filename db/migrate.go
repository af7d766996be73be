package db

import (
	"bitwise74/mailverify/db/migrations"
	"context"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dialects = map[string]string{
	"sqlite":   "sqlite3",
	"postgres": "postgres",
}

type gooseLogger struct {
	l *zap.SugaredLogger
}

func (g gooseLogger) Fatalf(format string, v ...any) { g.l.Fatalf(format, v...) }
func (g gooseLogger) Printf(format string, v ...any) { g.l.Debugf(format, v...) }

// Migrate applies every pending migration embedded in the migrations package.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	dialect, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("no migration dialect for driver %q", driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle, %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{zap.S()})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect, %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations, %w", err)
	}

	return nil
}

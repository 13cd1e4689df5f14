package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

const dir = "migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Run executes a goose command (up, down, status, version, ...) against the
// MySQL schema embedded in this package.
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	return Run(ctx, db, "up")
}

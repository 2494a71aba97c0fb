package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/npsexplorer/explorer/pkg/observability"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// goose keeps its filesystem, dialect and logger in package state
var gooseMu sync.Mutex

// seams for tests
var (
	gooseUp      = goose.UpContext
	gooseDown    = goose.DownContext
	gooseStatus  = goose.StatusContext
	gooseVersion = goose.GetDBVersionContext
)

// Migrator applies the embedded schema migrations
type Migrator struct {
	db     *sql.DB
	logger goose.Logger
}

// NewMigrator creates a Migrator. A nil logger keeps goose's default output.
func NewMigrator(db *sql.DB, logger goose.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

func (m *Migrator) prepare() error {
	goose.SetBaseFS(migrationsFS)
	if m.logger != nil {
		goose.SetLogger(m.logger)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration
func (m *Migrator) Up(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := m.prepare(); err != nil {
		return err
	}
	if err := gooseUp(ctx, m.db, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration
func (m *Migrator) Down(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := m.prepare(); err != nil {
		return err
	}
	if err := gooseDown(ctx, m.db, migrationsDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Status logs the applied state of every migration
func (m *Migrator) Status(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := m.prepare(); err != nil {
		return err
	}
	if err := gooseStatus(ctx, m.db, migrationsDir); err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	return nil
}

// Version returns the current schema version
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := m.prepare(); err != nil {
		return 0, err
	}
	version, err := gooseVersion(ctx, m.db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// GooseLogger routes goose output through the service logger
func GooseLogger(logger *observability.Logger) goose.Logger {
	return gooseLogger{logger: logger}
}

type gooseLogger struct {
	logger *observability.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Errorf(strings.TrimSuffix(format, "\n"), v...)
	os.Exit(1)
}

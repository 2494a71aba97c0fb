package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/npsexplorer/explorer/pkg/observability"
)

// ConnectionConfig holds database connection configuration
type ConnectionConfig struct {
	URL         string
	MaxConns    int
	MinConns    int
	Timeout     time.Duration
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// ConnectionManager owns the PostgreSQL connection pool shared by every store
type ConnectionManager struct {
	db     *sql.DB
	config ConnectionConfig
	logger *observability.Logger
}

// NewConnectionManager opens the pool, applies the pool limits and verifies
// the server is reachable within config.Timeout.
func NewConnectionManager(ctx context.Context, config ConnectionConfig, logger *observability.Logger) (*ConnectionManager, error) {
	db, err := sql.Open("postgres", config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	cm := newConnectionManager(db, config, logger)

	pingCtx, cancel := context.WithTimeout(ctx, cm.config.Timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cm.logger.WithFields(map[string]interface{}{
		"max_conns": config.MaxConns,
		"min_conns": config.MinConns,
	}).Info("Database connection pool ready")

	return cm, nil
}

func newConnectionManager(db *sql.DB, config ConnectionConfig, logger *observability.Logger) *ConnectionManager {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	db.SetMaxOpenConns(config.MaxConns)
	if config.MinConns > 0 {
		db.SetMaxIdleConns(config.MinConns)
	}
	db.SetConnMaxLifetime(config.MaxLifetime)
	db.SetConnMaxIdleTime(config.MaxIdleTime)

	return &ConnectionManager{db: db, config: config, logger: logger}
}

// DB returns the pool
func (cm *ConnectionManager) DB() *sql.DB {
	return cm.db
}

// HealthCheck pings the database
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unhealthy: %w", err)
	}
	return nil
}

// Stats returns connection pool statistics
func (cm *ConnectionManager) Stats() sql.DBStats {
	return cm.db.Stats()
}

// Close closes the pool
func (cm *ConnectionManager) Close() error {
	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	cm.logger.Info("Database connection pool closed")
	return nil
}

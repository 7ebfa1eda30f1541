// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"defect-reporter/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient holds the connection pool behind the draft store.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a lib/pq pool sized and aged from cfg. The pool is
// lazy; call Ping to check the server is reachable.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres %s/%s: %w", cfg.Host, cfg.Database, err)
	}
	ConfigurePool(db, cfg)
	return &PostgresClient{DB: db}, nil
}

// ConfigurePool applies the pool limits of cfg to db.
func ConfigurePool(db *sql.DB, cfg config.PostgresConfig) {
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(config.GetDuration(cfg.ConnMaxLifetime))
	db.SetConnMaxIdleTime(config.GetDuration(cfg.ConnMaxIdleTime))
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

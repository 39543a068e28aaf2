// internal/common/database/postgres.go
package database

import (
	"database/sql"
	"fmt"
	"time"

	"loan-approval/internal/common/config"

	_ "github.com/lib/pq"
)

// NewPostgres opens a pool on the Postgres reference database. It does not
// dial; call Ping to check reachability.
func NewPostgres(cfg config.PostgresConfig) (*SQLClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	// Choices are read once at start-up, so the pool stays small.
	maxOpen := cfg.MaxConnections
	if maxOpen <= 0 {
		maxOpen = 2
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	return &SQLClient{DB: db, Driver: "postgres"}, nil
}

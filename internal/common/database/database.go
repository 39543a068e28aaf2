// internal/common/database/database.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"loan-approval/internal/common/config"
	"loan-approval/internal/common/errors"
)

// SQLClient is a database/sql pool opened on one of the reference-table
// drivers.
type SQLClient struct {
	DB     *sql.DB
	Driver string
}

// OpenReference opens the reference store for driver and verifies it is
// reachable. Failures are DATABASE_CONNECTION_FAILED errors.
func OpenReference(ctx context.Context, driver string, cfg config.DatabaseConfig) (*SQLClient, error) {
	var (
		client *SQLClient
		err    error
	)
	switch driver {
	case "postgres":
		client, err = NewPostgres(cfg.Postgres)
	case "sqlite":
		client, err = NewSQLite(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported reference driver %q", driver)
	}
	if err != nil {
		return nil, errors.NewDatabaseConnectionFailedError(err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Ping tests the database connection
func (c *SQLClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return errors.NewDatabaseConnectionFailedError(fmt.Errorf("%s: %w", c.Driver, err))
	}
	return nil
}

// Close closes the database connection
func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// internal/common/database/sqlite.go
package database

import (
	"database/sql"
	"fmt"

	"loan-approval/internal/common/config"

	_ "modernc.org/sqlite"
)

// NewSQLite opens the database at cfg.Path read-only. The file must already
// exist.
func NewSQLite(cfg config.SQLiteConfig) (*SQLClient, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	db, err := sql.Open("sqlite", "file:"+cfg.Path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(1)

	return &SQLClient{DB: db, Driver: "sqlite"}, nil
}

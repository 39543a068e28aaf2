package reference

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Querier is satisfied by *sql.DB.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// SQLSource reads choices from a reference table in Postgres or SQLite.
type SQLSource struct {
	db      Querier
	table   string
	allowed map[string]bool
}

// NewSQLSource validates the table name; only categorical columns may be listed.
func NewSQLSource(db Querier, table string) (*SQLSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid reference table name %q", table)
	}

	allowed := make(map[string]bool, len(models.CategoricalColumns))
	for _, col := range models.CategoricalColumns {
		allowed[col] = true
	}
	return &SQLSource{db: db, table: table, allowed: allowed}, nil
}

func (s *SQLSource) ListDistinct(ctx context.Context, column string) ([]string, error) {
	if !s.allowed[column] {
		return nil, fmt.Errorf("column %q is not a categorical reference column", column)
	}

	query := fmt.Sprintf(
		`SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s`,
		column, s.table, column, column,
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("distinct "+column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, errors.NewQueryExecutionFailedError("distinct "+column, err)
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("distinct "+column, err)
	}

	// Database collation may differ from byte order.
	return sortedUnique(values), nil
}

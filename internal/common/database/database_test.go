package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-approval/internal/common/config"
	"loan-approval/internal/common/errors"
)

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.db")

	seed, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = seed.Exec(`CREATE TABLE loans (person_gender TEXT)`)
	require.NoError(t, err)
	_, err = seed.Exec(`INSERT INTO loans VALUES ('male'), ('female')`)
	require.NoError(t, err)
	require.NoError(t, seed.Close())
	return path
}

func TestNewSQLite_ReadOnly(t *testing.T) {
	client, err := NewSQLite(config.SQLiteConfig{Path: seedSQLite(t)})
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, "sqlite", client.Driver)

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))

	rows, err := client.DB.QueryContext(ctx, `SELECT person_gender FROM loans ORDER BY person_gender`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var v string
		require.NoError(t, rows.Scan(&v))
		got = append(got, v)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"female", "male"}, got)

	_, err = client.DB.ExecContext(ctx, `INSERT INTO loans VALUES ('other')`)
	assert.Error(t, err, "connection must be read-only")
}

func TestNewSQLite_EmptyPath(t *testing.T) {
	_, err := NewSQLite(config.SQLiteConfig{})
	assert.Error(t, err)
}

func TestOpenReference(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		client, err := OpenReference(ctx, "sqlite", config.DatabaseConfig{
			SQLite: config.SQLiteConfig{Path: seedSQLite(t)},
		})
		require.NoError(t, err)
		assert.NoError(t, client.Close())
	})

	t.Run("sqlite file missing", func(t *testing.T) {
		_, err := OpenReference(ctx, "sqlite", config.DatabaseConfig{
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "missing.db")},
		})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeDatabaseConnectionFailed))
	})

	t.Run("sqlite path empty", func(t *testing.T) {
		_, err := OpenReference(ctx, "sqlite", config.DatabaseConfig{})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeDatabaseConnectionFailed))
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenReference(ctx, "mongo", config.DatabaseConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported reference driver "mongo"`)
	})
}

func TestNewRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDatabaseConnectionFailed))
}

func TestNewPostgres_DoesNotDial(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, User: "u", Database: "d", SSLMode: "disable",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres", client.Driver)
	assert.Equal(t, 2, client.DB.Stats().MaxOpenConnections)
	assert.NoError(t, client.Close())
}

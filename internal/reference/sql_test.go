package reference

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	commonerrors "loan-approval/internal/common/errors"
)

func TestSQLSource_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	source, err := NewSQLSource(db, "public.loan_applications")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT DISTINCT loan_intent FROM public\.loan_applications WHERE loan_intent IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"loan_intent"}).
			AddRow("VENTURE").
			AddRow("EDUCATION").
			AddRow(nil).
			AddRow("MEDICAL"))

	got, err := source.ListDistinct(context.Background(), "loan_intent")
	require.NoError(t, err)
	assert.Equal(t, []string{"EDUCATION", "MEDICAL", "VENTURE"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	source, err := NewSQLSource(db, "loan_applications")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT DISTINCT person_gender`).WillReturnError(errors.New("connection reset"))

	_, err = source.ListDistinct(context.Background(), "person_gender")
	require.Error(t, err)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeQueryExecutionFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_RejectsUnsafeNames(t *testing.T) {
	_, err := NewSQLSource(nil, "loans; DROP TABLE users")
	assert.Error(t, err)

	source, err := NewSQLSource(nil, "loans")
	require.NoError(t, err)
	_, err = source.ListDistinct(context.Background(), "credit_score")
	assert.ErrorContains(t, err, "not a categorical")
}

func TestSQLSource_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "reference.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE loans (person_home_ownership TEXT, person_gender TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO loans VALUES ('RENT','male'), ('OWN','female'), (NULL,'male'), ('rent','female'), ('MORTGAGE', NULL)`)
	require.NoError(t, err)

	source, err := NewSQLSource(db, "loans")
	require.NoError(t, err)

	choices, err := Snapshot(context.Background(), source, []string{"person_home_ownership", "person_gender"})
	require.NoError(t, err)

	assert.Equal(t, []string{"MORTGAGE", "OWN", "RENT", "rent"}, choices.ChoicesFor("person_home_ownership"))
	assert.Equal(t, []string{"female", "male"}, choices.ChoicesFor("person_gender"))
}

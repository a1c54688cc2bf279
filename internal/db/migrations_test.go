package db_test

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"shopcompare/backend/internal/config"
	"shopcompare/backend/internal/db"
)

func newMySQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, config.DriverMySQL), mock
}

func expectIndexCount(mock sqlmock.Sqlmock, index string, count int) {
	mock.ExpectQuery("information_schema.statistics").
		WithArgs("rate_limits", index).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestMigrateMySQL_ReplacesLegacyUniqueIndex(t *testing.T) {
	database, mock := newMySQLMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS rate_limits").WillReturnResult(sqlmock.NewResult(0, 0))
	expectIndexCount(mock, "unique_identifier", 1)
	mock.ExpectExec("DROP INDEX unique_identifier").WillReturnResult(sqlmock.NewResult(0, 0))
	expectIndexCount(mock, "uq_rate_limits_subject", 0)
	mock.ExpectExec("ADD UNIQUE KEY uq_rate_limits_subject").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Migrate(database))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateMySQL_FreshSchema(t *testing.T) {
	database, mock := newMySQLMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS rate_limits").WillReturnResult(sqlmock.NewResult(0, 0))
	expectIndexCount(mock, "unique_identifier", 0)
	expectIndexCount(mock, "uq_rate_limits_subject", 1)

	require.NoError(t, db.Migrate(database))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateMySQL_CreateFails(t *testing.T) {
	database, mock := newMySQLMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("access denied"))

	err := db.Migrate(database)
	require.Error(t, err)
	require.Contains(t, err.Error(), "statement 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

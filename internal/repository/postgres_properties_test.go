package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPropertiesRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresPropertiesRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresPropertiesRepository(db)

	return db, mock, repo
}

func TestGetProperty_Success(t *testing.T) {
	db, mock, repo := setupPropertiesRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM properties`).
		WithArgs("dataTypeListString").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("humidity,temperature"))

	value, err := repo.Get(context.Background(), "dataTypeListString")

	require.NoError(t, err)
	assert.Equal(t, "humidity,temperature", value)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProperty_Missing(t *testing.T) {
	db, mock, repo := setupPropertiesRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM properties`).
		WithArgs("dataTypeListString").
		WillReturnError(sql.ErrNoRows)

	value, err := repo.Get(context.Background(), "dataTypeListString")

	require.NoError(t, err)
	assert.Equal(t, "", value)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetProperty_Upsert(t *testing.T) {
	db, mock, repo := setupPropertiesRepo(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO properties`).
		WithArgs("dataTypeListString", "humidity,temperature").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Set(context.Background(), "dataTypeListString", "humidity,temperature")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

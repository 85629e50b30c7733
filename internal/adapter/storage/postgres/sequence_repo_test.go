package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceRepo_EnsureInitialized(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSequenceRepo(mock)

	// Fresh database: the counter row is created at 0 so the first Next can
	// match a row instead of scanning nothing.
	mock.ExpectExec("INSERT INTO payment_counter .+ WHERE NOT EXISTS").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.EnsureInitialized(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepo_EnsureInitialized_AlreadyPresent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSequenceRepo(mock)

	mock.ExpectExec("INSERT INTO payment_counter .+ WHERE NOT EXISTS").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = repo.EnsureInitialized(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepo_Next(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSequenceRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE payment_counter SET next_value").
		WillReturnRows(pgxmock.NewRows([]string{"next_value"}).AddRow(int64(0)))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	seq, err := repo.Next(context.Background(), dbTx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepo_Next_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSequenceRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE payment_counter SET next_value").
		WillReturnError(errors.New("connection reset"))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.Next(context.Background(), dbTx)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecrementAvailableTxRefusesNegative(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewShowtimeRepo(db)

	mock.ExpectBegin()
	// the WHERE guard matched nothing: available_seats < n
	mock.ExpectExec("UPDATE showtimes").
		WithArgs(uint32(3), uint64(5), uint32(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	require.NoError(t, err)

	err = repo.DecrementAvailableTx(context.Background(), tx, 5, 3)
	assert.ErrorIs(t, err, ErrInvariant)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementAvailableTxWithinCapacity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewShowtimeRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE showtimes").
		WithArgs(uint32(2), uint64(5), uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	require.NoError(t, err)

	assert.NoError(t, repo.DecrementAvailableTx(context.Background(), tx, 5, 2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreAvailableTxRefusesOverTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewShowtimeRepo(db)

	mock.ExpectBegin()
	// restoring past total_seats matches zero rows, e.g. on a double
	// cancellation restore
	mock.ExpectExec("UPDATE showtimes").
		WithArgs(uint32(4), uint64(5), uint32(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	require.NoError(t, err)

	err = repo.RestoreAvailableTx(context.Background(), tx, 5, 4)
	assert.ErrorIs(t, err, ErrInvariant)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumo-cinema/ticketing/internal/model"
)

func TestCreateTxOverlappingHoldsOneWinner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSeatHoldRepo(db)
	expires := time.Now().UTC().Add(15 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seat_holds").
		WithArgs(uint64(9), uint64(101), uint64(1), expires).
		WillReturnResult(sqlmock.NewResult(41, 1))
	// the second request hits the (showtime_id, seat_id) unique key
	mock.ExpectExec("INSERT INTO seat_holds").
		WithArgs(uint64(9), uint64(101), uint64(2), expires).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	tx, err := db.Begin()
	require.NoError(t, err)

	winner := &model.SeatHold{ShowtimeID: 9, SeatID: 101, CustomerID: 1, ExpiresAt: expires}
	require.NoError(t, repo.CreateTx(context.Background(), tx, winner, "A1"))
	assert.Equal(t, uint64(41), winner.ID)
	assert.Equal(t, model.HoldStatusReserved, winner.Status)

	loser := &model.SeatHold{ShowtimeID: 9, SeatID: 101, CustomerID: 2, ExpiresAt: expires}
	err = repo.CreateTx(context.Background(), tx, loser, "A1")
	var unavailable *SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A1"}, unavailable.SeatIDs)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmByBookingTxShortfallIsInvariant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSeatHoldRepo(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	// two holds expected, but one expired out of the WHERE clause
	mock.ExpectExec("UPDATE seat_holds").
		WithArgs(now, uint64(7), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	require.NoError(t, err)

	err = repo.ConfirmByBookingTx(context.Background(), tx, 7, 2, now)
	assert.ErrorIs(t, err, ErrInvariant)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmByBookingTxExactCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSeatHoldRepo(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_holds").
		WithArgs(now, uint64(7), now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	tx, err := db.Begin()
	require.NoError(t, err)

	assert.NoError(t, repo.ConfirmByBookingTx(context.Background(), tx, 7, 2, now))
	require.NoError(t, mock.ExpectationsWereMet())
}

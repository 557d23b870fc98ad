package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumo-cinema/ticketing/internal/model"
)

func TestListByCustomerScopesThroughBookings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepo(db)
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	processed := created.Add(time.Minute)

	cols := []string{"id", "booking_id", "amount_cents", "payment_method", "status",
		"transaction_id", "created_at", "processed_at"}
	mock.ExpectQuery("JOIN bookings").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 11, int64(2500), model.PaymentMethodPayPal, model.PaymentStatusCompleted, "txn_b", created.Add(time.Hour), processed).
			AddRow(1, 10, int64(1800), model.PaymentMethodCreditCard, model.PaymentStatusRefunded, "txn_a", created, nil))

	payments, err := repo.ListByCustomer(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	assert.Equal(t, uint64(2), payments[0].ID)
	assert.Equal(t, int64(2500), payments[0].AmountCents)
	require.NotNil(t, payments[0].ProcessedAt)
	assert.Equal(t, processed, payments[0].ProcessedAt.UTC())

	assert.Equal(t, model.PaymentStatusRefunded, payments[1].Status)
	assert.Nil(t, payments[1].ProcessedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

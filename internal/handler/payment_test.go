package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumo-cinema/ticketing/internal/repository"
)

func newPaymentHandlerWithMock(t *testing.T) (*PaymentHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewPaymentHandler(
		repository.NewShowtimeRepo(db),
		repository.NewSeatHoldRepo(db),
		repository.NewBookingRepo(db),
		repository.NewCustomerRepo(db),
		repository.NewPaymentRepo(db),
	)
	return h, mock
}

func TestCreatePaymentRejectsDeactivatedShowtime(t *testing.T) {
	h, mock := newPaymentHandlerWithMock(t)
	now := time.Now().UTC()

	bookingCols := []string{"id", "customer_id", "showtime_id", "booking_reference", "number_of_seats",
		"seat_numbers", "subtotal_cents", "discount_cents", "total_cents", "base_price_cents",
		"loyalty_points_used", "special_requests", "status", "created_at", "confirmed_at", "cancelled_at"}
	showtimeCols := []string{"id", "movie_title", "theater_id", "screen_number", "starts_at", "total_seats",
		"available_seats", "ticket_price_cents", "layout_id", "is_active", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(11, 7, 5, "BK123456ABCD", 2, []byte(`["A1","A2"]`),
				int64(2000), int64(0), int64(2000), int64(1000),
				0, "", "pending", now, nil, nil))
	// the showtime was taken off sale after the booking was created
	mock.ExpectQuery("FROM showtimes").
		WillReturnRows(sqlmock.NewRows(showtimeCols).
			AddRow(5, "Night Train", 1, 1, now.Add(3*time.Hour), 50,
				50, int64(1000), nil, false, now, now))
	mock.ExpectRollback()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments",
		strings.NewReader(`{"booking_id":11,"payment_method":"credit_card"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("customer_id", uint64(7))

	require.NoError(t, h.CreatePayment(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "showtime no longer available")
	require.NoError(t, mock.ExpectationsWereMet())
}

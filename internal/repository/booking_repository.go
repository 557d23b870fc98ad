package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lumo-cinema/ticketing/internal/model"
)

// ErrBookingNotFound is returned when a booking lookup matches no row.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo provides data access to the bookings table.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, customer_id, showtime_id, booking_reference, number_of_seats,
	seat_numbers, subtotal_cents, discount_cents, total_cents, base_price_cents,
	loyalty_points_used, special_requests, status, created_at, confirmed_at, cancelled_at`

// referenceRetries bounds how often CreateTx regenerates a colliding
// booking reference before giving up.
const referenceRetries = 5

// CreateTx inserts a pending booking inside the caller's transaction,
// generating its reference.  References are not unique by construction,
// only by the unique column; on a duplicate the insert is retried with a
// fresh reference.  The generated ID, reference and created_at are
// written back into b.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking, now time.Time) error {
	seatsJSON, err := json.Marshal(b.SeatNumbers)
	if err != nil {
		return err
	}
	const q = `INSERT INTO bookings
	           (customer_id, showtime_id, booking_reference, number_of_seats, seat_numbers,
	            subtotal_cents, discount_cents, total_cents, base_price_cents,
	            loyalty_points_used, special_requests, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?)`
	for attempt := 0; attempt < referenceRetries; attempt++ {
		ref, err := model.GenerateReference(now)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, q,
			b.CustomerID, b.ShowtimeID, ref, b.NumberOfSeats, seatsJSON,
			b.SubtotalCents, b.DiscountCents, b.TotalCents, b.BasePriceCents,
			b.LoyaltyPointsUsed, b.SpecialRequests, now.UTC(),
		)
		if err != nil {
			if isDuplicateEntry(err) {
				continue
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		b.ID = uint64(id)
		b.Reference = ref
		b.Status = model.BookingStatusPending
		b.CreatedAt = now.UTC()
		return nil
	}
	return errors.New("could not generate a unique booking reference")
}

// GetForCustomer fetches a booking by primary key, restricted to its
// owning customer.  A booking owned by someone else is reported as not
// found rather than forbidden so the endpoint does not leak existence.
func (r *BookingRepo) GetForCustomer(ctx context.Context, id, customerID uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND customer_id = ?`, id, customerID)
	return scanBooking(row)
}

// GetForUpdateTx fetches a booking by primary key with a row lock,
// serializing the confirm and cancel paths against each other.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id)
	return scanBooking(row)
}

// ListByCustomer returns a customer's bookings, newest first.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE customer_id = ? ORDER BY created_at DESC, id DESC`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBookingRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateStatusTx persists the status and transition timestamps of a
// booking whose transition methods have already been applied in memory.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `UPDATE bookings SET status = ?, confirmed_at = ?, cancelled_at = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, b.Status, nullableTime(b.ConfirmedAt), nullableTime(b.CancelledAt), b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 when the row already holds these values,
		// which is legitimate for idempotent confirms, so only a
		// missing row is treated as an error.
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, b.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBookingNotFound
			}
			return err
		}
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func scanBooking(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	var seatsJSON []byte
	err := row.Scan(
		&b.ID, &b.CustomerID, &b.ShowtimeID, &b.Reference, &b.NumberOfSeats,
		&seatsJSON, &b.SubtotalCents, &b.DiscountCents, &b.TotalCents, &b.BasePriceCents,
		&b.LoyaltyPointsUsed, &b.SpecialRequests, &b.Status, &b.CreatedAt, &b.ConfirmedAt, &b.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if err := unmarshalSeatNumbers(seatsJSON, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookingRows(rows *sql.Rows) (*model.Booking, error) {
	var b model.Booking
	var seatsJSON []byte
	err := rows.Scan(
		&b.ID, &b.CustomerID, &b.ShowtimeID, &b.Reference, &b.NumberOfSeats,
		&seatsJSON, &b.SubtotalCents, &b.DiscountCents, &b.TotalCents, &b.BasePriceCents,
		&b.LoyaltyPointsUsed, &b.SpecialRequests, &b.Status, &b.CreatedAt, &b.ConfirmedAt, &b.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalSeatNumbers(seatsJSON, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func unmarshalSeatNumbers(raw []byte, b *model.Booking) error {
	if len(raw) == 0 {
		b.SeatNumbers = nil
		return nil
	}
	return json.Unmarshal(raw, &b.SeatNumbers)
}

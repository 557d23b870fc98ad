package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lumo-cinema/ticketing/internal/model"
)

// SeatHoldRepo provides data access to the seat_holds table.  Hold rows
// exist only while the hold is live (reserved and unexpired) or
// confirmed; expiry and release delete the row.  The unique
// (showtime_id, seat_id) key is therefore the enforcement of the core
// invariant: at most one live hold per seat per showtime, no matter how
// requests interleave.  All timestamps are UTC.
type SeatHoldRepo struct {
	db *sql.DB
}

// NewSeatHoldRepo returns a new SeatHoldRepo bound to the provided database.
func NewSeatHoldRepo(db *sql.DB) *SeatHoldRepo { return &SeatHoldRepo{db: db} }

// HoldWithSeat pairs a hold with the wire identifier of its seat so that
// conflict and expiry errors can name the seat.
type HoldWithSeat struct {
	Hold   model.SeatHold
	SeatID string // wire identifier, e.g. "A12"
}

// ExpireForShowtimeTx deletes all reserved holds of a showtime whose
// expiry has passed and returns how many were removed.  Running this at
// the start of the reserve and confirm transactions means a leftover
// expired row can never block a new hold on the unique key; the global
// sweeper does the same housekeeping for idle showtimes.
func (r *SeatHoldRepo) ExpireForShowtimeTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (int64, error) {
	const q = `DELETE FROM seat_holds
	           WHERE showtime_id = ? AND status = 'reserved' AND expires_at <= UTC_TIMESTAMP()`
	res, err := tx.ExecContext(ctx, q, showtimeID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// SweepExpired deletes expired reserved holds across all showtimes.  It
// is called from the background sweeper; liveness checks never rely on
// it having run.
func (r *SeatHoldRepo) SweepExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM seat_holds
	           WHERE status = 'reserved' AND expires_at <= UTC_TIMESTAMP()`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// LiveSeatIDsTx returns the DB seat ids that currently carry a live hold
// for the showtime, locking the matching rows.  Reserve transactions use
// it to report conflicts before attempting inserts.
func (r *SeatHoldRepo) LiveSeatIDsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (map[uint64]bool, error) {
	const q = `SELECT seat_id FROM seat_holds
	           WHERE showtime_id = ?
	             AND (status = 'confirmed' OR expires_at > UTC_TIMESTAMP())
	           FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	live := make(map[uint64]bool)
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		live[sid] = true
	}
	return live, rows.Err()
}

// CreateTx inserts one hold row inside the caller's transaction.  A
// duplicate key on (showtime_id, seat_id) means another request won the
// seat between the availability check and this insert; it is reported as
// a SeatsUnavailableError naming the seat, and the caller rolls back the
// whole request so no partial holds survive.
func (r *SeatHoldRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.SeatHold, seatLabel string) error {
	const q = `INSERT INTO seat_holds (showtime_id, seat_id, customer_id, status, expires_at)
	           VALUES (?, ?, ?, 'reserved', ?)`
	res, err := tx.ExecContext(ctx, q, h.ShowtimeID, h.SeatID, h.CustomerID, h.ExpiresAt.UTC())
	if err != nil {
		if isDuplicateEntry(err) {
			return &SeatsUnavailableError{SeatIDs: []string{seatLabel}}
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	h.Status = model.HoldStatusReserved
	return nil
}

// ReservedHoldsForSeatsTx loads the reserved holds a customer has on the
// given seats of a showtime, locking the rows.  The booking path uses it
// to re-validate holds immediately before attaching them to a booking;
// expiry is re-checked by the caller against the returned rows, not the
// stored status.
func (r *SeatHoldRepo) ReservedHoldsForSeatsTx(ctx context.Context, tx *sql.Tx, showtimeID, customerID uint64, seatDBIDs []uint64) ([]HoldWithSeat, error) {
	if len(seatDBIDs) == 0 {
		return nil, nil
	}
	q := `SELECT h.id, h.showtime_id, h.seat_id, h.customer_id, h.booking_id, h.status, h.expires_at, h.confirmed_at, h.created_at,
	             s.row_label, s.seat_number
	      FROM seat_holds h
	      JOIN seats s ON s.id = h.seat_id
	      WHERE h.showtime_id = ? AND h.customer_id = ? AND h.status = 'reserved' AND h.seat_id IN (`
	args := []interface{}{showtimeID, customerID}
	for i, sid := range seatDBIDs {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, sid)
	}
	q += `) FOR UPDATE`
	return r.queryHoldsWithSeats(ctx, tx, q, args...)
}

// HoldsByBookingTx returns all holds attached to a booking, with their
// seat identifiers, locking the rows.
func (r *SeatHoldRepo) HoldsByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]HoldWithSeat, error) {
	const q = `SELECT h.id, h.showtime_id, h.seat_id, h.customer_id, h.booking_id, h.status, h.expires_at, h.confirmed_at, h.created_at,
	                  s.row_label, s.seat_number
	           FROM seat_holds h
	           JOIN seats s ON s.id = h.seat_id
	           WHERE h.booking_id = ?
	           FOR UPDATE`
	return r.queryHoldsWithSeats(ctx, tx, q, bookingID)
}

func (r *SeatHoldRepo) queryHoldsWithSeats(ctx context.Context, tx *sql.Tx, q string, args ...interface{}) ([]HoldWithSeat, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HoldWithSeat
	for rows.Next() {
		var hw HoldWithSeat
		var rowLabel string
		var seatNum uint32
		if err := rows.Scan(
			&hw.Hold.ID, &hw.Hold.ShowtimeID, &hw.Hold.SeatID, &hw.Hold.CustomerID, &hw.Hold.BookingID,
			&hw.Hold.Status, &hw.Hold.ExpiresAt, &hw.Hold.ConfirmedAt, &hw.Hold.CreatedAt,
			&rowLabel, &seatNum,
		); err != nil {
			return nil, err
		}
		seat := model.Seat{Row: rowLabel, Number: seatNum}
		hw.SeatID = seat.Identifier()
		out = append(out, hw)
	}
	return out, rows.Err()
}

// AttachBookingTx links the given reserved holds to a booking.  The
// holds stay reserved: they are only confirmed when the booking itself
// is confirmed by payment.
func (r *SeatHoldRepo) AttachBookingTx(ctx context.Context, tx *sql.Tx, holdIDs []uint64, bookingID uint64) error {
	if len(holdIDs) == 0 {
		return nil
	}
	q := `UPDATE seat_holds SET booking_id = ? WHERE id IN (`
	args := []interface{}{bookingID}
	for i, id := range holdIDs {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += `)`
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// ConfirmByBookingTx transitions every hold of a booking to confirmed,
// stamping confirmed_at.  It must be called after the caller re-checked
// expiry on the locked rows; holds whose expiry lapsed in the meantime
// no longer match the WHERE clause, and a shortfall in the affected row
// count is surfaced as ErrInvariant so the confirmation fails closed
// rather than confirming with missing seats.
func (r *SeatHoldRepo) ConfirmByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64, expected int, now time.Time) error {
	const q = `UPDATE seat_holds
	           SET status = 'confirmed', confirmed_at = ?
	           WHERE booking_id = ? AND status = 'reserved' AND expires_at > ?`
	res, err := tx.ExecContext(ctx, q, now.UTC(), bookingID, now.UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n != int64(expected) {
		return ErrInvariant
	}
	return nil
}

// DeleteByBookingTx removes all holds of a booking, releasing the seats.
// Used when a confirmed booking is cancelled or a pending one fails.
// Idempotent: deleting zero rows is fine.
func (r *SeatHoldRepo) DeleteByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (int64, error) {
	const q = `DELETE FROM seat_holds WHERE booking_id = ?`
	res, err := tx.ExecContext(ctx, q, bookingID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ReleaseByCustomerTx removes a customer's unattached reserved holds on
// a showtime and returns how many were released.  Confirmed holds and
// holds already attached to a booking are left alone.
func (r *SeatHoldRepo) ReleaseByCustomerTx(ctx context.Context, tx *sql.Tx, showtimeID, customerID uint64) (int64, error) {
	const q = `DELETE FROM seat_holds
	           WHERE showtime_id = ? AND customer_id = ? AND status = 'reserved' AND booking_id IS NULL`
	res, err := tx.ExecContext(ctx, q, showtimeID, customerID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// LiveHolds returns the live holds of a showtime without locking; the
// seat map view uses it to compute availability fresh on every call.
// Expiry is evaluated in the query so stale statuses cannot leak.
func (r *SeatHoldRepo) LiveHolds(ctx context.Context, showtimeID uint64) (map[uint64]string, error) {
	const q = `SELECT seat_id, status FROM seat_holds
	           WHERE showtime_id = ?
	             AND (status = 'confirmed' OR expires_at > UTC_TIMESTAMP())`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	live := make(map[uint64]string)
	for rows.Next() {
		var sid uint64
		var status string
		if err := rows.Scan(&sid, &status); err != nil {
			return nil, err
		}
		live[sid] = status
	}
	return live, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lumo-cinema/ticketing/internal/model"
)

// Payment lookup errors.
var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentExists   = errors.New("payment already exists for booking")
)

// PaymentRepo provides data access to the payments table.  The unique
// booking_id column keeps payments 1:1 with bookings.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, booking_id, amount_cents, payment_method, status, transaction_id, created_at, processed_at`

// CreateTx inserts a payment record inside the caller's transaction.  A
// duplicate booking_id is reported as ErrPaymentExists.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (booking_id, amount_cents, payment_method, status, transaction_id)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, p.BookingID, p.AmountCents, p.Method, p.Status, p.TransactionID)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrPaymentExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByBookingID fetches the payment of a booking.
func (r *PaymentRepo) GetByBookingID(ctx context.Context, bookingID uint64) (*model.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE booking_id = ?`, bookingID)
	return scanPayment(row)
}

// GetByBookingForUpdateTx fetches the payment of a booking with a row
// lock, serializing repeated completion callbacks.
func (r *PaymentRepo) GetByBookingForUpdateTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Payment, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE booking_id = ? FOR UPDATE`, bookingID)
	return scanPayment(row)
}

// ListByCustomer returns a customer's payments, newest first.  Payments
// carry no customer column of their own; the scope comes from joining
// the owning bookings.
func (r *PaymentRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Payment, error) {
	const q = `SELECT p.id, p.booking_id, p.amount_cents, p.payment_method, p.status,
	                  p.transaction_id, p.created_at, p.processed_at
	           FROM payments p
	           JOIN bookings b ON b.id = p.booking_id
	           WHERE b.customer_id = ?
	           ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Method, &p.Status,
			&p.TransactionID, &p.CreatedAt, &p.ProcessedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateStatusTx persists the status, transaction id and processed_at of
// a payment whose transition methods were applied in memory.
func (r *PaymentRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `UPDATE payments SET status = ?, transaction_id = ?, processed_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, p.Status, p.TransactionID, nullableTime(p.ProcessedAt), p.ID)
	return err
}

func scanPayment(row *sql.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Method, &p.Status,
		&p.TransactionID, &p.CreatedAt, &p.ProcessedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

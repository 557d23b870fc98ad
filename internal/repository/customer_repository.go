package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lumo-cinema/ticketing/internal/model"
)

// Customer lookup errors.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("customer already exists")
)

// CustomerRepo provides data access to the customers table.  The loyalty
// point balance is only ever mutated through guarded UPDATEs so it can
// never go negative regardless of concurrent bookings.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the provided database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerColumns = `id, external_id, full_name, email, loyalty_points, created_at, updated_at`

// Create inserts a customer profile and loads the stored row back.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	const q = `INSERT INTO customers (external_id, full_name, email, loyalty_points)
	           VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.ExternalID, c.FullName, c.Email, c.LoyaltyPoints)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrCustomerExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// GetByID fetches a customer by primary key.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	return scanCustomer(row)
}

// GetByExternalID fetches a customer by the identity service's uuid.
func (r *CustomerRepo) GetByExternalID(ctx context.Context, externalID string) (*model.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE external_id = ?`, externalID)
	return scanCustomer(row)
}

// GetForUpdateTx fetches a customer with a row lock so the point balance
// the caller reads stays valid for the rest of the transaction.
func (r *CustomerRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Customer, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ? FOR UPDATE`, id)
	return scanCustomer(row)
}

// DeductPointsTx subtracts points from a customer's balance.  The WHERE
// guard keeps the balance from going below zero: when the customer is
// short the update matches no row and ErrInsufficientPoints is returned,
// so callers never need a separate read-then-check.
func (r *CustomerRepo) DeductPointsTx(ctx context.Context, tx *sql.Tx, customerID uint64, points uint32) error {
	if points == 0 {
		return nil
	}
	const q = `UPDATE customers SET loyalty_points = loyalty_points - ?
	           WHERE id = ? AND loyalty_points >= ?`
	res, err := tx.ExecContext(ctx, q, points, customerID, points)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

// AddPointsTx credits points to a customer's balance.
func (r *CustomerRepo) AddPointsTx(ctx context.Context, tx *sql.Tx, customerID uint64, points uint32) error {
	if points == 0 {
		return nil
	}
	const q = `UPDATE customers SET loyalty_points = loyalty_points + ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, points, customerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("credit %d points to customer %d: %w", points, customerID, ErrInvariant)
	}
	return nil
}

func scanCustomer(row *sql.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.ExternalID, &c.FullName, &c.Email, &c.LoyaltyPoints, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lumo-cinema/ticketing/internal/model"
)

// ErrTheaterNotFound is returned when a theater lookup fails.
var ErrTheaterNotFound = errors.New("theater not found")

// TheaterRepo provides persistence for theaters.  Theaters are catalog
// data: created during provisioning and read-mostly afterwards.
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo constructs a TheaterRepo with the given DB handle.
func NewTheaterRepo(db *sql.DB) *TheaterRepo { return &TheaterRepo{db: db} }

// Create inserts a new theater and populates the generated ID along with
// DB-default fields.
func (r *TheaterRepo) Create(ctx context.Context, t *model.Theater) error {
	const q = `INSERT INTO theaters (name, address, city, phone_number) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Address, t.City, t.PhoneNumber)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT id, name, address, city, phone_number, is_active, created_at, updated_at
	             FROM theaters WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, t.ID).Scan(
		&t.ID, &t.Name, &t.Address, &t.City, &t.PhoneNumber, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
}

// GetByID retrieves a theater by its ID.  It returns ErrTheaterNotFound
// when no row exists.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	const q = `SELECT id, name, address, city, phone_number, is_active, created_at, updated_at
	           FROM theaters WHERE id = ?`
	var t model.Theater
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.Address, &t.City, &t.PhoneNumber, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTheaterNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns all active theaters ordered by name.
func (r *TheaterRepo) List(ctx context.Context) ([]model.Theater, error) {
	const q = `SELECT id, name, address, city, phone_number, is_active, created_at, updated_at
	           FROM theaters WHERE is_active = 1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Theater
	for rows.Next() {
		var t model.Theater
		if err := rows.Scan(&t.ID, &t.Name, &t.Address, &t.City, &t.PhoneNumber, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

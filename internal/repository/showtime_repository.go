package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lumo-cinema/ticketing/internal/model"
)

// ErrShowtimeNotFound indicates that a showtime was not located in the DB.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrShowtimeExists is returned when a showtime is scheduled for a
// (theater, screen, start time) slot that is already taken.
var ErrShowtimeExists = errors.New("showtime already scheduled for this slot")

const showtimeColumns = `id, movie_title, theater_id, screen_number, starts_at, total_seats,
	available_seats, ticket_price_cents, layout_id, is_active, created_at, updated_at`

// ShowtimeRepo manages persistence for showtimes, including the
// available-seats counter that backs coarse-grained inventory.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// DB exposes the underlying sql.DB so handlers can begin transactions
// spanning multiple repositories.
func (r *ShowtimeRepo) DB() *sql.DB { return r.db }

func scanShowtime(row interface{ Scan(...interface{}) error }, s *model.Showtime) error {
	return row.Scan(
		&s.ID, &s.MovieTitle, &s.TheaterID, &s.ScreenNumber, &s.StartsAt, &s.TotalSeats,
		&s.AvailableSeats, &s.TicketPriceCents, &s.LayoutID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
}

// Create inserts a new showtime.  available_seats starts equal to
// total_seats.  Slot collisions on (theater, screen, starts_at) are
// reported as ErrShowtimeExists.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
	const q = `INSERT INTO showtimes
	           (movie_title, theater_id, screen_number, starts_at, total_seats, available_seats, ticket_price_cents, layout_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.MovieTitle, s.TheaterID, s.ScreenNumber, s.StartsAt.UTC(), s.TotalSeats, s.TotalSeats, s.TicketPriceCents, s.LayoutID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrShowtimeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	sel := `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ?`
	return scanShowtime(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// GetByID retrieves a showtime by its ID.  It returns
// ErrShowtimeNotFound when no row exists.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	q := `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ?`
	var s model.Showtime
	if err := scanShowtime(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetForUpdateTx loads a showtime inside the caller's transaction with a
// row lock.  Booking paths that read the counter or validate availability
// take this lock so concurrent bookings for the same showtime serialize.
func (r *ShowtimeRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Showtime, error) {
	q := `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ? FOR UPDATE`
	var s model.Showtime
	if err := scanShowtime(tx.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &s, nil
}

// DecrementAvailableTx subtracts n from available_seats inside the
// caller's transaction.  The guard in the WHERE clause refuses to drive
// the counter negative; matching zero rows after the caller already
// validated availability under lock means the invariant broke, which is
// surfaced as ErrInvariant.
func (r *ShowtimeRepo) DecrementAvailableTx(ctx context.Context, tx *sql.Tx, id uint64, n uint32) error {
	const q = `UPDATE showtimes
	           SET available_seats = available_seats - ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND available_seats >= ?`
	res, err := tx.ExecContext(ctx, q, n, id, n)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("decrement %d seats on showtime %d: %w", n, id, ErrInvariant)
	}
	return nil
}

// RestoreAvailableTx adds n back to available_seats inside the caller's
// transaction.  The guard refuses to grow the counter past total_seats,
// protecting against a double restore.
func (r *ShowtimeRepo) RestoreAvailableTx(ctx context.Context, tx *sql.Tx, id uint64, n uint32) error {
	const q = `UPDATE showtimes
	           SET available_seats = available_seats + ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND available_seats + ? <= total_seats`
	res, err := tx.ExecContext(ctx, q, n, id, n)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("restore %d seats on showtime %d: %w", n, id, ErrInvariant)
	}
	return nil
}

// ListUpcoming returns active showtimes starting after now, ordered by
// start time.  Used by the public catalog endpoint.
func (r *ShowtimeRepo) ListUpcoming(ctx context.Context) ([]model.Showtime, error) {
	q := `SELECT ` + showtimeColumns + ` FROM showtimes
	      WHERE is_active = 1 AND starts_at > UTC_TIMESTAMP()
	      ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Showtime
	for rows.Next() {
		var s model.Showtime
		if err := scanShowtime(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

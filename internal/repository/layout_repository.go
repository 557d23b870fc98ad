package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/lumo-cinema/ticketing/internal/model"
)

// ErrLayoutNotFound is returned when a seat layout lookup fails.
var ErrLayoutNotFound = errors.New("seat layout not found")

// ErrLayoutExists is returned when a layout is provisioned for a
// (theater, screen) pair that already has one.  Layouts are immutable in
// normal operation, so this is surfaced as a conflict rather than an
// upsert.
var ErrLayoutExists = errors.New("seat layout already exists for this screen")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a MySQL unique constraint
// violation.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// SeatLayoutRepo provides persistence for seat layouts and their seats.
// A layout and its seats are created together in one transaction during
// theater provisioning and treated as read-only by booking-time code.
type SeatLayoutRepo struct {
	db *sql.DB
}

// NewSeatLayoutRepo constructs a SeatLayoutRepo with the given DB handle.
func NewSeatLayoutRepo(db *sql.DB) *SeatLayoutRepo { return &SeatLayoutRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions
// spanning multiple repositories.
func (r *SeatLayoutRepo) DB() *sql.DB { return r.db }

// CreateWithSeats inserts the layout and all of its seats in a single
// transaction.  The uniqueness of (theater, screen) is enforced by the
// table's unique key; a duplicate is reported as ErrLayoutExists.  On
// success the layout ID and each seat's ID are populated.
func (r *SeatLayoutRepo) CreateWithSeats(ctx context.Context, layout *model.SeatLayout, seats []model.Seat) error {
	rowCfg, err := json.Marshal(layout.RowConfiguration)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO seat_layouts (theater_id, screen_number, name, total_rows, total_seats, row_configuration)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		layout.TheaterID, layout.ScreenNumber, layout.Name, layout.TotalRows, layout.TotalSeats, rowCfg,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrLayoutExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	layout.ID = uint64(id)
	if len(seats) > 0 {
		query := `INSERT INTO seats (layout_id, row_label, seat_number, seat_type, price_multiplier_pct) VALUES `
		args := make([]interface{}, 0, len(seats)*5)
		for i := range seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			args = append(args, layout.ID, seats[i].Row, seats[i].Number, seats[i].SeatType, seats[i].PriceMultiplierPct)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID retrieves a layout by its ID, unmarshalling the row
// configuration from its JSON column.
func (r *SeatLayoutRepo) GetByID(ctx context.Context, id uint64) (*model.SeatLayout, error) {
	const q = `SELECT id, theater_id, screen_number, name, total_rows, total_seats, row_configuration, created_at
	           FROM seat_layouts WHERE id = ?`
	var l model.SeatLayout
	var rowCfg []byte
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&l.ID, &l.TheaterID, &l.ScreenNumber, &l.Name, &l.TotalRows, &l.TotalSeats, &rowCfg, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLayoutNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(rowCfg, &l.RowConfiguration); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByTheaterScreen retrieves the layout of a specific screen.
func (r *SeatLayoutRepo) GetByTheaterScreen(ctx context.Context, theaterID uint64, screen uint32) (*model.SeatLayout, error) {
	const q = `SELECT id FROM seat_layouts WHERE theater_id = ? AND screen_number = ?`
	var id uint64
	err := r.db.QueryRowContext(ctx, q, theaterID, screen).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLayoutNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SeatsByLayout returns all seats of a layout ordered by row then seat
// number, which gives the seat map a deterministic shape.
func (r *SeatLayoutRepo) SeatsByLayout(ctx context.Context, layoutID uint64) ([]model.Seat, error) {
	const q = `SELECT id, layout_id, row_label, seat_number, seat_type, price_multiplier_pct, is_active
	           FROM seats
	           WHERE layout_id = ?
	           ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, layoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.LayoutID, &s.Row, &s.Number, &s.SeatType, &s.PriceMultiplierPct, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SeatsByIdentifiersTx resolves wire-format seat identifiers ("A12") to
// seat rows of the layout inside the caller's transaction.  The returned
// map is keyed by identifier; identifiers that resolve to no seat are
// simply absent, letting the caller name the first bad one.
func (r *SeatLayoutRepo) SeatsByIdentifiersTx(ctx context.Context, tx *sql.Tx, layoutID uint64, seatIDs []string) (map[string]model.Seat, error) {
	out := make(map[string]model.Seat, len(seatIDs))
	const q = `SELECT id, layout_id, row_label, seat_number, seat_type, price_multiplier_pct, is_active
	           FROM seats
	           WHERE layout_id = ? AND row_label = ? AND seat_number = ?`
	for _, sid := range seatIDs {
		row, num, err := model.ParseSeatID(sid)
		if err != nil {
			continue
		}
		var s model.Seat
		err = tx.QueryRowContext(ctx, q, layoutID, row, num).Scan(
			&s.ID, &s.LayoutID, &s.Row, &s.Number, &s.SeatType, &s.PriceMultiplierPct, &s.IsActive,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, err
		}
		out[sid] = s
	}
	return out, nil
}

// ResolveSeatsTx is the strict form of SeatsByIdentifiersTx used by the
// booking paths: every identifier must resolve, and the first one that
// does not is reported as an UnknownSeatError.
func (r *SeatLayoutRepo) ResolveSeatsTx(ctx context.Context, tx *sql.Tx, layoutID uint64, seatIDs []string) (map[string]model.Seat, error) {
	seats, err := r.SeatsByIdentifiersTx(ctx, tx, layoutID, seatIDs)
	if err != nil {
		return nil, err
	}
	for _, sid := range seatIDs {
		if _, ok := seats[sid]; !ok {
			return nil, &UnknownSeatError{SeatID: sid}
		}
	}
	return seats, nil
}

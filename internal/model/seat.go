package model

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Seat types supported by the catalog.  Blocked seats exist in the layout
// but can never be held or sold (wheelchair spaces under conversion,
// broken seats, projection equipment and so on).
const (
	SeatTypeStandard   = "standard"
	SeatTypePremium    = "premium"
	SeatTypeAccessible = "accessible"
	SeatTypeCouple     = "couple"
	SeatTypeBlocked    = "blocked"
)

// ValidSeatType reports whether t is one of the known seat types.
func ValidSeatType(t string) bool {
	switch t {
	case SeatTypeStandard, SeatTypePremium, SeatTypeAccessible, SeatTypeCouple, SeatTypeBlocked:
		return true
	}
	return false
}

// SeatLayout describes the static seating plan of one screen in a theater.
// There is at most one layout per (theater, screen) pair and it is created
// once during theater provisioning; booking-time code treats it as
// read-only.  RowConfiguration maps a row label to the number of seats in
// that row and is persisted as a JSON column.
//
// Fields:
//  ID               – primary key identifier.
//  TheaterID        – theater this layout belongs to.
//  ScreenNumber     – screen within the theater (1-based).
//  Name             – human readable label, e.g. "IMAX Hall".
//  TotalRows        – number of rows, derived from RowConfiguration.
//  TotalSeats       – number of seats, derived from RowConfiguration.
//  RowConfiguration – row label -> seat count.
//  CreatedAt        – creation timestamp.
type SeatLayout struct {
	ID               uint64            // seat_layouts.id
	TheaterID        uint64            // seat_layouts.theater_id
	ScreenNumber     uint32            // seat_layouts.screen_number
	Name             string            // seat_layouts.name
	TotalRows        uint32            // seat_layouts.total_rows
	TotalSeats       uint32            // seat_layouts.total_seats
	RowConfiguration map[string]uint32 // seat_layouts.row_configuration (JSON)
	CreatedAt        time.Time         // seat_layouts.created_at
}

// Seat is a single bookable position inside a layout, identified by its
// (row, number) pair.  PriceMultiplierPct scales the showtime's base
// ticket price in percent: 100 means face value, 150 means a 50% premium.
//
// Fields:
//  ID                 – primary key identifier.
//  LayoutID           – layout the seat belongs to.
//  Row                – single uppercase row letter, e.g. "A".
//  Number             – seat position in the row (1-based).
//  SeatType           – one of the SeatType* constants.
//  PriceMultiplierPct – price multiplier in percent (>= 0).
//  IsActive           – soft availability flag, independent of holds.
type Seat struct {
	ID                 uint64 // seats.id
	LayoutID           uint64 // seats.layout_id
	Row                string // seats.row_label
	Number             uint32 // seats.seat_number
	SeatType           string // seats.seat_type
	PriceMultiplierPct uint32 // seats.price_multiplier_pct
	IsActive           bool   // seats.is_active
}

// Identifier returns the human readable seat id used on the wire,
// e.g. "A12" for row A seat 12.
func (s *Seat) Identifier() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

// IsBlocked reports whether the seat can never be sold: either its type is
// blocked or it has been soft-disabled.
func (s *Seat) IsBlocked() bool {
	return s.SeatType == SeatTypeBlocked || !s.IsActive
}

// ErrBadSeatID is returned by ParseSeatID for identifiers that do not
// match the "{row}{number}" wire format.
var ErrBadSeatID = errors.New("malformed seat identifier")

// CanonicalSeatID parses a wire seat identifier and renders it back in
// canonical form, so spellings like "A01" name the same seat as "A1".
// Handlers canonicalize every incoming identifier before keying a map or
// a conflict list with it.
func CanonicalSeatID(id string) (string, error) {
	row, number, err := ParseSeatID(id)
	if err != nil {
		return "", err
	}
	return row + strconv.FormatUint(uint64(number), 10), nil
}

// ParseSeatID splits a wire-format seat identifier such as "A12" into its
// row letter and seat number.  The row is exactly one uppercase ASCII
// letter and the number is a positive integer.  Leading zeros in the
// number are accepted; CanonicalSeatID removes them.
func ParseSeatID(id string) (row string, number uint32, err error) {
	if len(id) < 2 {
		return "", 0, ErrBadSeatID
	}
	r := id[0]
	if r < 'A' || r > 'Z' {
		return "", 0, ErrBadSeatID
	}
	n, convErr := strconv.ParseUint(id[1:], 10, 32)
	if convErr != nil || n == 0 {
		return "", 0, ErrBadSeatID
	}
	return string(r), uint32(n), nil
}

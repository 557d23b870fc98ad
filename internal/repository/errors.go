// Package repository defines error values shared across repositories so
// that handlers can map failures onto the right HTTP responses.  The
// taxonomy separates validation problems (reject before any state
// change), conflicts (retry with different seats, or identically),
// missing resources, expected state refusals and invariant violations
// (never swallowed; logged and surfaced as internal errors).
package repository

import (
	"errors"
	"fmt"
)

// ErrNoSeatMap is returned when seat-level operations are requested on a
// showtime that has no seat layout attached.
var ErrNoSeatMap = errors.New("showtime has no seat map")

// ErrInsufficientSeats is returned on the counter-based path when a
// showtime does not have enough available seats for the request.
var ErrInsufficientSeats = errors.New("not enough seats available")

// ErrShowtimePast is returned when a booking is attempted for a showtime
// that already started or is no longer on sale.
var ErrShowtimePast = errors.New("showtime no longer available")

// ErrInsufficientPoints is returned when a customer tries to spend more
// loyalty points than their current balance.
var ErrInsufficientPoints = errors.New("insufficient loyalty points")

// ErrInvariant marks a broken storage invariant, e.g. an available-seats
// counter that would go negative.  It is unexpected by construction:
// callers log it and return a generic internal error.
var ErrInvariant = errors.New("storage invariant violated")

// UnknownSeatError reports a seat identifier that does not resolve to a
// seat in the showtime's layout.
type UnknownSeatError struct {
	SeatID string
}

func (e *UnknownSeatError) Error() string {
	return fmt.Sprintf("unknown seat %q", e.SeatID)
}

// SeatsUnavailableError reports seats that already carry a live hold for
// the showtime.  It is a conflict, not a validation failure: the client
// can retry with different seats.
type SeatsUnavailableError struct {
	SeatIDs []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %v", e.SeatIDs)
}

// HoldExpiredError reports a hold that lapsed between being created and
// being confirmed.
type HoldExpiredError struct {
	SeatID string
}

func (e *HoldExpiredError) Error() string {
	return fmt.Sprintf("hold on seat %q has expired", e.SeatID)
}

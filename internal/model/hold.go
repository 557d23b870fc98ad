package model

import "time"

// Seat hold statuses.  A hold row only exists while it is live or
// confirmed: expiry and release delete the row, so the unique
// (showtime_id, seat_id) key on the table is exactly the "at most one
// live hold per seat per showtime" invariant.
const (
	HoldStatusReserved  = "reserved"
	HoldStatusConfirmed = "confirmed"
)

// SeatHold is a time-bounded claim on one seat for one showtime, created
// before payment.  Reserved holds expire at ExpiresAt; confirmed holds
// belong to a booking and live until that booking is cancelled.
//
// Fields:
//  ID          – primary key identifier.
//  ShowtimeID  – showtime the seat is held for.
//  SeatID      – seat being held.
//  CustomerID  – customer who requested the hold.
//  BookingID   – owning booking once confirmed (nil while reserved).
//  Status      – reserved or confirmed.
//  ExpiresAt   – expiry for reserved holds.
//  ConfirmedAt – set when the hold transitions to confirmed.
//  CreatedAt   – creation timestamp.
type SeatHold struct {
	ID          uint64     // seat_holds.id
	ShowtimeID  uint64     // seat_holds.showtime_id
	SeatID      uint64     // seat_holds.seat_id
	CustomerID  uint64     // seat_holds.customer_id
	BookingID   *uint64    // seat_holds.booking_id (nullable)
	Status      string     // seat_holds.status
	ExpiresAt   time.Time  // seat_holds.expires_at
	ConfirmedAt *time.Time // seat_holds.confirmed_at (nullable)
	CreatedAt   time.Time  // seat_holds.created_at
}

// IsExpired reports whether a reserved hold has passed its expiry.
// Confirmed holds never expire.  Liveness must always be derived from
// this check rather than trusting the stored status, so a sweep job is
// an optimization and never a correctness requirement.
func (h *SeatHold) IsExpired(now time.Time) bool {
	return h.Status == HoldStatusReserved && now.After(h.ExpiresAt)
}

// IsLive reports whether the hold still blocks the seat: reserved and
// unexpired, or confirmed.
func (h *SeatHold) IsLive(now time.Time) bool {
	switch h.Status {
	case HoldStatusConfirmed:
		return true
	case HoldStatusReserved:
		return !now.After(h.ExpiresAt)
	}
	return false
}

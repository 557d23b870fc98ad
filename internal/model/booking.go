package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

// Booking statuses.  Cancelled and refunded are terminal; confirmed can
// still move to either of them.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusRefunded  = "refunded"
)

// ErrInvalidState is returned by a state transition invoked on a booking
// (or payment) whose current status does not allow it.
var ErrInvalidState = errors.New("invalid state transition")

// Booking groups the seats a customer bought for one showtime together
// with the pricing breakdown at the time of purchase.  Timestamps are set
// by the explicit transition methods below, never by the persistence
// layer.
//
// Fields:
//  ID                – primary key identifier.
//  CustomerID        – customer who made the booking.
//  ShowtimeID        – showtime being booked.
//  Reference         – unique human-facing reference, e.g. "BK123456AB0X".
//  NumberOfSeats     – how many seats the booking covers.
//  SeatNumbers       – seat identifiers ("A1", ...) for seat-mapped
//                      bookings; empty otherwise.  Stored as JSON.
//  SubtotalCents     – sum of unit prices before discount.
//  DiscountCents     – loyalty discount applied.
//  TotalCents        – subtotal minus discount.
//  BasePriceCents    – average unit price, kept for audit and display.
//  LoyaltyPointsUsed – points spent on the discount.
//  SpecialRequests   – free-form customer note.
//  Status            – pending | confirmed | cancelled | refunded.
//  CreatedAt         – creation timestamp.
//  ConfirmedAt       – set by Confirm.
//  CancelledAt       – set by Cancel.
type Booking struct {
	ID                uint64     // bookings.id
	CustomerID        uint64     // bookings.customer_id
	ShowtimeID        uint64     // bookings.showtime_id
	Reference         string     // bookings.booking_reference
	NumberOfSeats     uint32     // bookings.number_of_seats
	SeatNumbers       []string   // bookings.seat_numbers (JSON)
	SubtotalCents     int64      // bookings.subtotal_cents
	DiscountCents     int64      // bookings.discount_cents
	TotalCents        int64      // bookings.total_cents
	BasePriceCents    int64      // bookings.base_price_cents
	LoyaltyPointsUsed uint32     // bookings.loyalty_points_used
	SpecialRequests   string     // bookings.special_requests
	Status            string     // bookings.status
	CreatedAt         time.Time  // bookings.created_at
	ConfirmedAt       *time.Time // bookings.confirmed_at (nullable)
	CancelledAt       *time.Time // bookings.cancelled_at (nullable)
}

// referenceAlphabet is the character set for the random reference suffix.
const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReference builds a booking reference: a "BK" prefix, the last
// six digits of the Unix timestamp and four random characters.  The
// result is not guaranteed unique on its own; the caller relies on the
// unique column constraint and retries on collision.
func GenerateReference(now time.Time) (string, error) {
	ts := fmt.Sprintf("%06d", now.Unix()%1_000_000)
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	suffix := make([]byte, 4)
	for i, b := range buf {
		suffix[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return "BK" + ts + string(suffix), nil
}

// IsActive reports whether the booking is confirmed for a showtime that
// has not started yet.
func (b *Booking) IsActive(showtimeAt, now time.Time) bool {
	return b.Status == BookingStatusConfirmed && showtimeAt.After(now)
}

// CanCancel reports whether the booking may be cancelled: it must be
// confirmed and the showtime must be further away than the cutoff
// (2 hours in the default policy).  A false result is a normal refusal,
// not an error.
func (b *Booking) CanCancel(showtimeAt, now time.Time, cutoff time.Duration) bool {
	if b.Status != BookingStatusConfirmed {
		return false
	}
	return showtimeAt.Sub(now) > cutoff
}

// Confirm transitions pending -> confirmed and stamps ConfirmedAt.
// Confirming an already-confirmed booking is a no-op so that duplicate
// payment callbacks resolve locally; any other status is ErrInvalidState.
func (b *Booking) Confirm(now time.Time) error {
	switch b.Status {
	case BookingStatusConfirmed:
		return nil
	case BookingStatusPending:
		b.Status = BookingStatusConfirmed
		b.ConfirmedAt = &now
		return nil
	}
	return ErrInvalidState
}

// Cancel transitions pending|confirmed -> cancelled and stamps
// CancelledAt.  Terminal statuses are rejected with ErrInvalidState.
func (b *Booking) Cancel(now time.Time) error {
	switch b.Status {
	case BookingStatusPending, BookingStatusConfirmed:
		b.Status = BookingStatusCancelled
		b.CancelledAt = &now
		return nil
	}
	return ErrInvalidState
}

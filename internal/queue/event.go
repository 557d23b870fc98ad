// Package queue defines the booking lifecycle events published to
// RabbitMQ and the background consumer that turns them into an audit
// log.
package queue

// Queue names.  Both queues are declared durable by publisher and
// consumer alike, so declaration order does not matter.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is emitted after a booking's confirmation
// transaction commits.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	BookingReference string   `json:"booking_reference"`
	CustomerID       uint64   `json:"customer_id"`
	ShowtimeID       uint64   `json:"showtime_id"`
	MovieTitle       string   `json:"movie_title"`
	SeatNumbers      []string `json:"seat_numbers,omitempty"`
	NumberOfSeats    uint32   `json:"number_of_seats"`
	TotalCents       int64    `json:"total_cents"`
	PointsEarned     uint32   `json:"points_earned"`
	ConfirmedAt      string   `json:"confirmed_at"` // RFC3339 UTC
}

// BookingCancelledEvent is emitted after a cancellation commits.
type BookingCancelledEvent struct {
	BookingID        uint64 `json:"booking_id"`
	BookingReference string `json:"booking_reference"`
	CustomerID       uint64 `json:"customer_id"`
	ShowtimeID       uint64 `json:"showtime_id"`
	RefundCents      int64  `json:"refund_cents"`
	Reason           string `json:"reason,omitempty"`
	CancelledAt      string `json:"cancelled_at"` // RFC3339 UTC
}

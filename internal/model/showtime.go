package model

import "time"

// Showtime schedules a movie on a specific theater screen.  It is unique
// per (theater, screen, start time).  AvailableSeats is the single source
// of truth for coarse-grained inventory on showtimes without a seat
// layout: it is decremented exactly once when a booking is confirmed and
// restored exactly once when a confirmed booking is cancelled.  Seat-mapped
// showtimes track fine-grained availability through seat holds instead and
// leave the counter untouched.
//
// Fields:
//  ID               – primary key identifier.
//  MovieTitle       – title of the movie being screened.
//  TheaterID        – theater where the screening happens.
//  ScreenNumber     – screen within the theater.
//  StartsAt         – screening start time (UTC).
//  TotalSeats       – capacity of the screen.
//  AvailableSeats   – seats still sellable (0 <= available <= total).
//  TicketPriceCents – base ticket price in cents (> 0).
//  LayoutID         – optional seat layout for seat-level booking.
//  IsActive         – whether the showtime is on sale.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Showtime struct {
	ID               uint64    // showtimes.id
	MovieTitle       string    // showtimes.movie_title
	TheaterID        uint64    // showtimes.theater_id
	ScreenNumber     uint32    // showtimes.screen_number
	StartsAt         time.Time // showtimes.starts_at
	TotalSeats       uint32    // showtimes.total_seats
	AvailableSeats   uint32    // showtimes.available_seats
	TicketPriceCents int64     // showtimes.ticket_price_cents
	LayoutID         *uint64   // showtimes.layout_id (nullable)
	IsActive         bool      // showtimes.is_active
	CreatedAt        time.Time // showtimes.created_at
	UpdatedAt        time.Time // showtimes.updated_at
}

// HasSeatMap reports whether the showtime sells specific seats rather
// than a plain seat count.
func (s *Showtime) HasSeatMap() bool { return s.LayoutID != nil }

// SeatsSold returns how many seats have been sold through the counter.
func (s *Showtime) SeatsSold() uint32 { return s.TotalSeats - s.AvailableSeats }

// IsAvailable reports whether the showtime can still accept bookings:
// it must be active, have seats remaining and start in the future.
func (s *Showtime) IsAvailable(now time.Time) bool {
	return s.IsActive && s.AvailableSeats > 0 && s.StartsAt.After(now)
}

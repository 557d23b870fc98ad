package model

import "time"

// Theater identifies a physical cinema building.  Screens inside a theater
// are referenced by number from SeatLayout and Showtime rather than being
// modelled as rows of their own.
type Theater struct {
	ID          uint64    // theaters.id
	Name        string    // theaters.name
	Address     string    // theaters.address
	City        string    // theaters.city
	PhoneNumber string    // theaters.phone_number
	IsActive    bool      // theaters.is_active
	CreatedAt   time.Time // theaters.created_at
	UpdatedAt   time.Time // theaters.updated_at
}

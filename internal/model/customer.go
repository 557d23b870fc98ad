package model

import "time"

// Customer is the slice of the external identity service's profile that
// the booking core reads and writes: essentially the loyalty point
// balance.  Profiles are provisioned explicitly through the customer
// endpoint rather than being created lazily on first access.
type Customer struct {
	ID            uint64    // customers.id
	ExternalID    string    // customers.external_id (identity service uuid)
	FullName      string    // customers.full_name
	Email         string    // customers.email
	LoyaltyPoints uint32    // customers.loyalty_points (never negative)
	CreatedAt     time.Time // customers.created_at
	UpdatedAt     time.Time // customers.updated_at
}

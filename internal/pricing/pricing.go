// Package pricing computes ticket prices and loyalty discounts.  All
// functions are pure: they take explicit inputs and configuration and
// never touch storage, which keeps the money math trivially testable.
package pricing

import "fmt"

// Policy carries the loyalty conversion constants.  It is built from
// configuration and threaded into the handlers at construction time.
type Policy struct {
	// PointValueCents is the discount value of a single loyalty point.
	// The default policy is 10 points per currency unit, i.e. 10 cents
	// per point.
	PointValueCents int64
	// MaxDiscountPct caps the discount as a percentage of the subtotal.
	// The default policy is 50.
	MaxDiscountPct int64
}

// DefaultPolicy returns the standard loyalty policy: 1 point = 10 cents,
// discount capped at half the subtotal.
func DefaultPolicy() Policy {
	return Policy{PointValueCents: 10, MaxDiscountPct: 50}
}

// SeatPriceCents computes the price of one seat: the showtime's base
// ticket price scaled by the seat's multiplier in percent.  A standard
// seat has multiplierPct 100 and costs face value.
func SeatPriceCents(basePriceCents int64, multiplierPct uint32) int64 {
	return basePriceCents * int64(multiplierPct) / 100
}

// Quote is the result of pricing a whole booking.
type Quote struct {
	SubtotalCents  int64 // sum of unit prices before discount
	DiscountCents  int64 // loyalty discount actually applied
	TotalCents     int64 // subtotal minus discount
	AvgUnitCents   int64 // subtotal / seat count, for audit display
	PointsRequired uint32
}

// BookingTotal prices a booking from its per-seat unit prices and the
// number of loyalty points the customer chose to spend.  The discount is
// pointsUsed converted at the policy rate, clamped so it can never exceed
// MaxDiscountPct of the subtotal; a request that would exceed the cap is
// clamped, not rejected.  Verifying that the customer actually owns
// pointsUsed is the caller's job.
func (p Policy) BookingTotal(unitPrices []int64, pointsUsed uint32) Quote {
	var subtotal int64
	for _, u := range unitPrices {
		subtotal += u
	}
	discount := int64(pointsUsed) * p.PointValueCents
	if cap := subtotal * p.MaxDiscountPct / 100; discount > cap {
		discount = cap
	}
	q := Quote{
		SubtotalCents:  subtotal,
		DiscountCents:  discount,
		TotalCents:     subtotal - discount,
		PointsRequired: pointsUsed,
	}
	if n := int64(len(unitPrices)); n > 0 {
		q.AvgUnitCents = subtotal / n
	}
	return q
}

// PointsEarned returns the loyalty points awarded when a booking of the
// given total is confirmed: one point per whole currency unit spent.
func PointsEarned(totalCents int64) uint32 {
	if totalCents <= 0 {
		return 0
	}
	return uint32(totalCents / 100)
}

// FormatCents renders an amount of cents as a decimal currency string
// with two fractional digits, e.g. 2550 -> "25.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

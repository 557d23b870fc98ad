package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatPriceCents(t *testing.T) {
	// face value
	assert.Equal(t, int64(1200), SeatPriceCents(1200, 100))
	// premium seat at 1.5x: 10.00 * 1.5 = 15.00
	assert.Equal(t, int64(1500), SeatPriceCents(1000, 150))
	// blocked/free seats can carry a zero multiplier
	assert.Equal(t, int64(0), SeatPriceCents(1200, 0))
	// no rounding loss on uneven multipliers
	assert.Equal(t, int64(1375), SeatPriceCents(1100, 125))
}

func TestBookingTotalNoDiscount(t *testing.T) {
	q := DefaultPolicy().BookingTotal([]int64{1200, 1800}, 0)
	assert.Equal(t, int64(3000), q.SubtotalCents)
	assert.Equal(t, int64(0), q.DiscountCents)
	assert.Equal(t, int64(3000), q.TotalCents)
	assert.Equal(t, int64(1500), q.AvgUnitCents)
}

func TestBookingTotalWithPoints(t *testing.T) {
	// 50 points at 10 cents each = 5.00 off
	q := DefaultPolicy().BookingTotal([]int64{1200, 1200}, 50)
	assert.Equal(t, int64(2400), q.SubtotalCents)
	assert.Equal(t, int64(500), q.DiscountCents)
	assert.Equal(t, int64(1900), q.TotalCents)
}

func TestBookingTotalDiscountCap(t *testing.T) {
	// 500 points would be 50.00 off, but the cap is half of 24.00
	q := DefaultPolicy().BookingTotal([]int64{1200, 1200}, 500)
	assert.Equal(t, int64(1200), q.DiscountCents)
	assert.Equal(t, int64(1200), q.TotalCents)
}

func TestBookingTotalCapBoundary(t *testing.T) {
	p := DefaultPolicy()
	// exactly at the cap: 120 points = 12.00 = subtotal/2
	q := p.BookingTotal([]int64{1200, 1200}, 120)
	assert.Equal(t, int64(1200), q.DiscountCents)
	// one past the cap clamps instead of failing
	q = p.BookingTotal([]int64{1200, 1200}, 121)
	assert.Equal(t, int64(1200), q.DiscountCents)
}

func TestBookingTotalEmpty(t *testing.T) {
	q := DefaultPolicy().BookingTotal(nil, 0)
	assert.Equal(t, int64(0), q.SubtotalCents)
	assert.Equal(t, int64(0), q.TotalCents)
	assert.Equal(t, int64(0), q.AvgUnitCents)
}

func TestPointsEarned(t *testing.T) {
	assert.Equal(t, uint32(0), PointsEarned(0))
	assert.Equal(t, uint32(0), PointsEarned(99))
	assert.Equal(t, uint32(1), PointsEarned(100))
	assert.Equal(t, uint32(25), PointsEarned(2550))
	assert.Equal(t, uint32(0), PointsEarned(-500))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "25.50", FormatCents(2550))
	assert.Equal(t, "-3.07", FormatCents(-307))
}

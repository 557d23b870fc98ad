package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumo-cinema/ticketing/internal/model"
)

func layoutSeats() []model.Seat {
	return []model.Seat{
		{ID: 1, Row: "A", Number: 1, SeatType: model.SeatTypeStandard, PriceMultiplierPct: 100, IsActive: true},
		{ID: 2, Row: "A", Number: 2, SeatType: model.SeatTypePremium, PriceMultiplierPct: 150, IsActive: true},
		{ID: 3, Row: "A", Number: 3, SeatType: model.SeatTypeBlocked, PriceMultiplierPct: 100, IsActive: true},
		{ID: 4, Row: "B", Number: 1, SeatType: model.SeatTypeStandard, PriceMultiplierPct: 100, IsActive: true},
		{ID: 5, Row: "B", Number: 2, SeatType: model.SeatTypeStandard, PriceMultiplierPct: 100, IsActive: false},
	}
}

func TestBuildSeatMapStatuses(t *testing.T) {
	live := map[uint64]string{
		1: model.HoldStatusReserved,
		4: model.HoldStatusConfirmed,
	}
	rows, sum := BuildSeatMap(layoutSeats(), live, 1000)

	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Row)
	assert.Equal(t, "B", rows[1].Row)
	require.Len(t, rows[0].Seats, 3)
	require.Len(t, rows[1].Seats, 2)

	assert.Equal(t, seatStatusHeld, rows[0].Seats[0].Status)
	assert.Equal(t, seatStatusAvailable, rows[0].Seats[1].Status)
	assert.Equal(t, seatStatusBlocked, rows[0].Seats[2].Status)
	assert.Equal(t, seatStatusSold, rows[1].Seats[0].Status)
	// soft-disabled seats render blocked even without a hold
	assert.Equal(t, seatStatusBlocked, rows[1].Seats[1].Status)

	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 1, sum.Available)
	assert.Equal(t, 1, sum.Held)
	assert.Equal(t, 1, sum.Sold)
	assert.Equal(t, 2, sum.Blocked)
}

func TestBuildSeatMapPricing(t *testing.T) {
	rows, _ := BuildSeatMap(layoutSeats(), nil, 1000)

	standard := rows[0].Seats[0]
	assert.Equal(t, int64(1000), standard.PriceCents)
	assert.Equal(t, "10.00", standard.Price)

	premium := rows[0].Seats[1]
	assert.Equal(t, int64(1500), premium.PriceCents)
	assert.Equal(t, "15.00", premium.Price)
}

func TestBuildSeatMapIdentifiers(t *testing.T) {
	rows, _ := BuildSeatMap(layoutSeats(), nil, 1000)
	assert.Equal(t, "A1", rows[0].Seats[0].ID)
	assert.Equal(t, "A2", rows[0].Seats[1].ID)
	assert.Equal(t, "B2", rows[1].Seats[1].ID)
}

func TestBuildSeatMapEmpty(t *testing.T) {
	rows, sum := BuildSeatMap(nil, nil, 1000)
	assert.Empty(t, rows)
	assert.Equal(t, 0, sum.Total)
}

package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumo-cinema/ticketing/internal/model"
)

func TestBuildLayoutSeatsDefaults(t *testing.T) {
	seats, total, err := buildLayoutSeats(map[string]uint32{"A": 3, "B": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), total)
	require.Len(t, seats, 5)

	// rows come out alphabetically, seats in number order
	assert.Equal(t, "A1", seats[0].Identifier())
	assert.Equal(t, "A3", seats[2].Identifier())
	assert.Equal(t, "B1", seats[3].Identifier())

	for _, s := range seats {
		assert.Equal(t, model.SeatTypeStandard, s.SeatType)
		assert.Equal(t, uint32(100), s.PriceMultiplierPct)
		assert.True(t, s.IsActive)
	}
}

func TestBuildLayoutSeatsOverrides(t *testing.T) {
	mult := uint32(150)
	inactive := false
	seats, _, err := buildLayoutSeats(map[string]uint32{"A": 2}, []seatOverride{
		{SeatID: "A1", SeatType: model.SeatTypePremium, PriceMultiplierPct: &mult},
		{SeatID: "A2", IsActive: &inactive},
	})
	require.NoError(t, err)

	assert.Equal(t, model.SeatTypePremium, seats[0].SeatType)
	assert.Equal(t, uint32(150), seats[0].PriceMultiplierPct)
	assert.True(t, seats[0].IsActive)

	assert.Equal(t, model.SeatTypeStandard, seats[1].SeatType)
	assert.False(t, seats[1].IsActive)
}

func TestBuildLayoutSeatsRejectsBadOverrides(t *testing.T) {
	_, _, err := buildLayoutSeats(map[string]uint32{"A": 2}, []seatOverride{
		{SeatID: "A9", SeatType: model.SeatTypePremium},
	})
	require.Error(t, err)

	_, _, err = buildLayoutSeats(map[string]uint32{"A": 2}, []seatOverride{
		{SeatID: "x1"},
	})
	require.Error(t, err)

	_, _, err = buildLayoutSeats(map[string]uint32{"A": 2}, []seatOverride{
		{SeatID: "A1", SeatType: "recliner"},
	})
	require.Error(t, err)
}

func TestDedupeStrings(t *testing.T) {
	assert.Equal(t, []string{"A1", "A2"}, dedupeStrings([]string{"A1", "A2", "A1", ""}))
	assert.Empty(t, dedupeStrings([]string{"", ""}))
}

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShowtimeIsAvailable(t *testing.T) {
	now := time.Now().UTC()
	st := Showtime{IsActive: true, AvailableSeats: 5, StartsAt: now.Add(time.Hour)}
	assert.True(t, st.IsAvailable(now))

	soldOut := st
	soldOut.AvailableSeats = 0
	assert.False(t, soldOut.IsAvailable(now))

	started := st
	started.StartsAt = now
	assert.False(t, started.IsAvailable(now))

	inactive := st
	inactive.IsActive = false
	assert.False(t, inactive.IsAvailable(now))
}

func TestShowtimeSeatAccounting(t *testing.T) {
	st := Showtime{TotalSeats: 100, AvailableSeats: 73}
	assert.Equal(t, uint32(27), st.SeatsSold())

	assert.False(t, st.HasSeatMap())
	layoutID := uint64(4)
	st.LayoutID = &layoutID
	assert.True(t, st.HasSeatMap())
}

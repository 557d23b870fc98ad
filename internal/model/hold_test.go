package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHoldIsExpired(t *testing.T) {
	now := time.Now().UTC()

	live := SeatHold{Status: HoldStatusReserved, ExpiresAt: now.Add(time.Minute)}
	assert.False(t, live.IsExpired(now))

	lapsed := SeatHold{Status: HoldStatusReserved, ExpiresAt: now.Add(-time.Second)}
	assert.True(t, lapsed.IsExpired(now))

	// expiry boundary itself still counts as live
	boundary := SeatHold{Status: HoldStatusReserved, ExpiresAt: now}
	assert.False(t, boundary.IsExpired(now))

	// confirmed holds never expire, whatever expires_at says
	confirmed := SeatHold{Status: HoldStatusConfirmed, ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, confirmed.IsExpired(now))
}

func TestHoldIsLive(t *testing.T) {
	now := time.Now().UTC()

	assert.True(t, (&SeatHold{Status: HoldStatusReserved, ExpiresAt: now.Add(time.Minute)}).IsLive(now))
	assert.False(t, (&SeatHold{Status: HoldStatusReserved, ExpiresAt: now.Add(-time.Minute)}).IsLive(now))
	assert.True(t, (&SeatHold{Status: HoldStatusConfirmed, ExpiresAt: now.Add(-time.Hour)}).IsLive(now))
	assert.False(t, (&SeatHold{Status: "unknown"}).IsLive(now))
}

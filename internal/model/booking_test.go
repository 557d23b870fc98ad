package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferenceFormat(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	ref, err := GenerateReference(now)
	require.NoError(t, err)
	require.Len(t, ref, 12)
	assert.Equal(t, "BK", ref[:2])

	// middle six characters are the trailing digits of the timestamp
	for _, ch := range ref[2:8] {
		assert.True(t, ch >= '0' && ch <= '9', "timestamp part: %q", ref)
	}
	// suffix draws from the uppercase alphanumeric alphabet
	for _, ch := range ref[8:] {
		ok := (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		assert.True(t, ok, "suffix part: %q", ref)
	}
}

func TestConfirmTransitions(t *testing.T) {
	now := time.Now().UTC()

	b := Booking{Status: BookingStatusPending}
	require.NoError(t, b.Confirm(now))
	assert.Equal(t, BookingStatusConfirmed, b.Status)
	require.NotNil(t, b.ConfirmedAt)

	// confirming again is a no-op, not an error
	stamp := *b.ConfirmedAt
	require.NoError(t, b.Confirm(now.Add(time.Minute)))
	assert.Equal(t, stamp, *b.ConfirmedAt)

	cancelled := Booking{Status: BookingStatusCancelled}
	assert.ErrorIs(t, cancelled.Confirm(now), ErrInvalidState)
}

func TestCancelTransitions(t *testing.T) {
	now := time.Now().UTC()

	b := Booking{Status: BookingStatusConfirmed}
	require.NoError(t, b.Cancel(now))
	assert.Equal(t, BookingStatusCancelled, b.Status)
	require.NotNil(t, b.CancelledAt)

	assert.ErrorIs(t, b.Cancel(now), ErrInvalidState)

	refunded := Booking{Status: BookingStatusRefunded}
	assert.ErrorIs(t, refunded.Cancel(now), ErrInvalidState)
}

func TestCanCancelCutoff(t *testing.T) {
	cutoff := 2 * time.Hour
	now := time.Now().UTC()
	b := Booking{Status: BookingStatusConfirmed}

	// three hours out: fine
	assert.True(t, b.CanCancel(now.Add(3*time.Hour), now, cutoff))
	// exactly at the cutoff: refused
	assert.False(t, b.CanCancel(now.Add(2*time.Hour), now, cutoff))
	// just past the cutoff boundary: allowed
	assert.True(t, b.CanCancel(now.Add(2*time.Hour+time.Second), now, cutoff))
	// showtime already started
	assert.False(t, b.CanCancel(now.Add(-time.Minute), now, cutoff))

	pending := Booking{Status: BookingStatusPending}
	assert.False(t, pending.CanCancel(now.Add(3*time.Hour), now, cutoff))
}

func TestBookingIsActive(t *testing.T) {
	now := time.Now().UTC()
	b := Booking{Status: BookingStatusConfirmed}
	assert.True(t, b.IsActive(now.Add(time.Hour), now))
	assert.False(t, b.IsActive(now.Add(-time.Hour), now))

	b.Status = BookingStatusCancelled
	assert.False(t, b.IsActive(now.Add(time.Hour), now))
}

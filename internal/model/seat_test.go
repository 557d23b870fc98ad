package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatID(t *testing.T) {
	row, num, err := ParseSeatID("A12")
	require.NoError(t, err)
	assert.Equal(t, "A", row)
	assert.Equal(t, uint32(12), num)

	row, num, err = ParseSeatID("Z1")
	require.NoError(t, err)
	assert.Equal(t, "Z", row)
	assert.Equal(t, uint32(1), num)
}

func TestParseSeatIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "A", "12", "a12", "A0", "A-1", "AA12", "A1x"} {
		_, _, err := ParseSeatID(id)
		assert.ErrorIs(t, err, ErrBadSeatID, "id %q", id)
	}
}

func TestCanonicalSeatID(t *testing.T) {
	for in, want := range map[string]string{
		"A1":   "A1",
		"A01":  "A1",
		"B007": "B7",
		"C12":  "C12",
	} {
		got, err := CanonicalSeatID(in)
		require.NoError(t, err, "id %q", in)
		assert.Equal(t, want, got, "id %q", in)
	}

	_, err := CanonicalSeatID("1A")
	assert.ErrorIs(t, err, ErrBadSeatID)
	_, err = CanonicalSeatID("A0")
	assert.ErrorIs(t, err, ErrBadSeatID)
}

func TestCanonicalSeatIDMatchesIdentifier(t *testing.T) {
	// A row rebuilt from the database renders its identifier
	// canonically; a client spelling with leading zeros must land on
	// the same key.
	seat := Seat{Row: "A", Number: 1}
	held := map[string]bool{seat.Identifier(): true}

	id, err := CanonicalSeatID("A01")
	require.NoError(t, err)
	assert.True(t, held[id])
}

func TestSeatIdentifierRoundTrip(t *testing.T) {
	s := Seat{Row: "C", Number: 7}
	row, num, err := ParseSeatID(s.Identifier())
	require.NoError(t, err)
	assert.Equal(t, s.Row, row)
	assert.Equal(t, s.Number, num)
}

func TestSeatIsBlocked(t *testing.T) {
	active := Seat{SeatType: SeatTypeStandard, IsActive: true}
	assert.False(t, active.IsBlocked())

	blocked := Seat{SeatType: SeatTypeBlocked, IsActive: true}
	assert.True(t, blocked.IsBlocked())

	disabled := Seat{SeatType: SeatTypePremium, IsActive: false}
	assert.True(t, disabled.IsBlocked())
}

func TestValidSeatType(t *testing.T) {
	assert.True(t, ValidSeatType(SeatTypeCouple))
	assert.True(t, ValidSeatType(SeatTypeAccessible))
	assert.False(t, ValidSeatType("recliner"))
	assert.False(t, ValidSeatType(""))
}

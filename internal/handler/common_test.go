package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSeatIDs(t *testing.T) {
	ids, bad, err := canonicalSeatIDs([]string{"A01", "B2", "", "A1"})
	require.NoError(t, err)
	assert.Empty(t, bad)
	// "A01" and "A1" are the same seat and must not survive as two
	// entries, or the reserve path would collide with itself on the
	// unique hold key.
	assert.Equal(t, []string{"A1", "B2"}, ids)
}

func TestCanonicalSeatIDsReportsMalformed(t *testing.T) {
	_, bad, err := canonicalSeatIDs([]string{"A1", "1B"})
	require.Error(t, err)
	assert.Equal(t, "1B", bad)
}

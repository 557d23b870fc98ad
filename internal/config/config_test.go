package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "ticketing")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.Booking.HoldTTLDefault)
	assert.Equal(t, 5*time.Minute, cfg.Booking.HoldTTLMin)
	assert.Equal(t, 60*time.Minute, cfg.Booking.HoldTTLMax)
	assert.Equal(t, uint32(10), cfg.Booking.MaxSeatsPerBooking)
	assert.Equal(t, 2*time.Hour, cfg.Booking.CancellationCutoff)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Window)
}

func TestLoadClampsRateLimitWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_WINDOW_SEC", "0")
	cfg := Load()

	// the limiter divides by the window in seconds, so it is never
	// allowed below one second
	assert.Equal(t, time.Second, cfg.RateLimit.Window)
}

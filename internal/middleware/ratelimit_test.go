package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumo-cinema/ticketing/internal/config"
)

func invokeLimiter(t *testing.T, cfg config.RateLimitConfig, rdb *redis.Client) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	require.NoError(t, RateLimit(cfg, rdb)(next)(c))
	return rec.Code
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false}
	assert.Equal(t, http.StatusOK, invokeLimiter(t, cfg, nil))
}

func TestRateLimitZeroWindowDoesNotPanic(t *testing.T) {
	// unreachable redis: the limiter must fail open, and a zero window
	// must not divide by zero while building the key
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	cfg := config.RateLimitConfig{Enabled: true, Prefix: "rl", Limit: 5, Window: 0}
	assert.Equal(t, http.StatusOK, invokeLimiter(t, cfg, rdb))
}

package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/lumo-cinema/ticketing/internal/config"
)

// RateLimit returns a fixed-window request limiter backed by Redis,
// keyed per client and route.  When the limiter is disabled, Redis is
// unavailable or a Redis call fails, requests pass through: losing rate
// limiting is preferable to failing bookings.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	// a zero or sub-second window would divide by zero below
	winSec := int64(cfg.Window / time.Second)
	if winSec < 1 {
		winSec = 1
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			window := time.Now().Unix() / winSec
			key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, clientKey(c), c.Path(), window)

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if count == 1 {
				rdb.Expire(ctx, key, time.Duration(winSec)*time.Second)
			}

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				retry := winSec - (time.Now().Unix() % winSec)
				c.Response().Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too many requests",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}

// clientKey prefers the authenticated customer, falling back to the
// caller's IP for unauthenticated routes.
func clientKey(c echo.Context) string {
	if v := c.Get("customer_id"); v != nil {
		return fmt.Sprintf("cust:%v", v)
	}
	if ip := c.RealIP(); ip != "" {
		return "ip:" + ip
	}
	return "anon"
}

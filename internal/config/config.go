package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses the policy durations
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable; required ones are enforced by must() and a
// missing value stops the process at startup rather than at first use.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify access tokens from the identity service

	Booking   BookingPolicy   // seat hold and cancellation policy
	RateLimit RateLimitConfig // per-client request limiting
}

// BookingPolicy carries the tunable booking rules.  It is loaded once and
// threaded into the handlers at construction time; nothing reads the
// environment after startup.
type BookingPolicy struct {
	HoldTTLDefault     time.Duration // hold lifetime when the request does not ask for one
	HoldTTLMin         time.Duration // lower bound on a requested hold lifetime
	HoldTTLMax         time.Duration // upper bound on a requested hold lifetime
	MaxSeatsPerBooking uint32        // seats allowed in a single booking
	CancellationCutoff time.Duration // minimum gap between cancellation and showtime start
	SweepInterval      time.Duration // how often the background sweeper removes expired holds
}

// RateLimitConfig controls the Redis-backed request limiter on the
// mutating booking endpoints.  When disabled (or when Redis is down) the
// limiter passes every request through.
type RateLimitConfig struct {
	Enabled bool          // master switch
	Prefix  string        // key prefix in Redis
	Limit   int           // requests allowed per window
	Window  time.Duration // window length
}

// Load reads configuration from the environment and returns a Config.
// Connection settings are required; policy values fall back to the
// defaults below when unset.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		JWTSecret: must("JWT_SECRET"),   // secret for verifying bearer tokens
		Booking: BookingPolicy{
			HoldTTLDefault:     time.Duration(intOr("HOLD_TTL_MIN_DEFAULT", 15)) * time.Minute,
			HoldTTLMin:         time.Duration(intOr("HOLD_TTL_MIN_LOWER", 5)) * time.Minute,
			HoldTTLMax:         time.Duration(intOr("HOLD_TTL_MIN_UPPER", 60)) * time.Minute,
			MaxSeatsPerBooking: uint32(intOr("MAX_SEATS_PER_BOOKING", 10)),
			CancellationCutoff: time.Duration(intOr("CANCELLATION_CUTOFF_HOURS", 2)) * time.Hour,
			SweepInterval:      time.Duration(intOr("HOLD_SWEEP_INTERVAL_SEC", 60)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled: boolOr("RATE_LIMIT_ENABLED", true),
			Prefix:  stringOr("RATE_LIMIT_PREFIX", "rl"),
			Limit:   intOr("RATE_LIMIT_REQUESTS", 30),
			Window:  time.Duration(max(1, intOr("RATE_LIMIT_WINDOW_SEC", 60))) * time.Second,
		},
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr reads an integer environment variable, returning def when unset.
// An unparsable value is a fatal configuration error.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// stringOr reads a string environment variable, returning def when unset.
func stringOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// boolOr reads a boolean environment variable, returning def when unset.
func boolOr(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool for %s: %q", key, s)
	}
	return b
}

package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/lumo-cinema/ticketing/internal/config"
	"github.com/lumo-cinema/ticketing/internal/handler"
	"github.com/lumo-cinema/ticketing/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Catalog *handler.CatalogHandler
	SeatMap *handler.SeatMapHandler
	Hold    *handler.HoldHandler
	Booking *handler.BookingHandler
	Payment *handler.PaymentHandler
}

// Register wires all routes onto the Echo instance.  Browse endpoints
// are public; everything that holds seats, books or pays requires a
// bearer token and passes through the rate limiter.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// public browse
	e.GET("/v1/theaters", h.Catalog.ListTheaters)
	e.GET("/v1/showtimes", h.Catalog.ListShowtimes)
	e.GET("/v1/showtimes/:id/seat-map", h.SeatMap.GetSeatMap)

	// provisioning (theater operators and the identity sync job)
	e.POST("/v1/theaters", h.Catalog.CreateTheater)
	e.POST("/v1/theaters/:id/layouts", h.Catalog.CreateLayout)
	e.POST("/v1/showtimes", h.Catalog.CreateShowtime)
	e.POST("/v1/customers", h.Catalog.CreateCustomer)

	// booking flow, authenticated and rate limited
	auth := e.Group("/v1")
	auth.Use(middleware.CustomerAuth(cfg.JWTSecret))
	auth.Use(middleware.RateLimit(cfg.RateLimit, rdb))

	auth.POST("/showtimes/:id/reserve-seats", h.Hold.ReserveSeats)
	auth.DELETE("/showtimes/:id/holds", h.Hold.ReleaseHolds)

	auth.POST("/bookings", h.Booking.CreateBooking)
	auth.GET("/bookings", h.Booking.ListBookings)
	auth.GET("/bookings/:id", h.Booking.GetBooking)
	auth.POST("/bookings/:id/cancel", h.Booking.CancelBooking)

	auth.POST("/payments", h.Payment.CreatePayment)
	auth.GET("/payments", h.Payment.ListPayments)
}

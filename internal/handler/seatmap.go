package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumo-cinema/ticketing/internal/model"
	"github.com/lumo-cinema/ticketing/internal/pricing"
	"github.com/lumo-cinema/ticketing/internal/repository"
)

// Seat statuses as rendered on the seat map.
const (
	seatStatusAvailable = "available"
	seatStatusHeld      = "held"
	seatStatusSold      = "sold"
	seatStatusBlocked   = "blocked"
)

// SeatMapSeat is one seat cell in the seat map response.
type SeatMapSeat struct {
	ID         string `json:"id"`   // wire identifier, e.g. "A12"
	Type       string `json:"type"` // seat type
	Price      string `json:"price"`
	PriceCents int64  `json:"price_cents"`
	Status     string `json:"status"`
}

// SeatMapRow groups the seats of one row, in seat-number order.
type SeatMapRow struct {
	Row   string        `json:"row"`
	Seats []SeatMapSeat `json:"seats"`
}

// SeatMapSummary aggregates per-status seat counts.
type SeatMapSummary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Held      int `json:"held"`
	Sold      int `json:"sold"`
	Blocked   int `json:"blocked"`
}

// BuildSeatMap assembles the seat map rows from the layout's seats and
// the live holds of the showtime.  seats must be ordered by row then seat
// number; live maps a seat's DB id to its hold status.  Pure so the
// status and pricing rules are testable without a database.
func BuildSeatMap(seats []model.Seat, live map[uint64]string, basePriceCents int64) ([]SeatMapRow, SeatMapSummary) {
	var rows []SeatMapRow
	var sum SeatMapSummary
	for _, s := range seats {
		status := seatStatusAvailable
		switch {
		case s.IsBlocked():
			status = seatStatusBlocked
		case live[s.ID] == model.HoldStatusConfirmed:
			status = seatStatusSold
		case live[s.ID] == model.HoldStatusReserved:
			status = seatStatusHeld
		}
		priceCents := pricing.SeatPriceCents(basePriceCents, s.PriceMultiplierPct)
		cell := SeatMapSeat{
			ID:         s.Identifier(),
			Type:       s.SeatType,
			Price:      pricing.FormatCents(priceCents),
			PriceCents: priceCents,
			Status:     status,
		}
		if len(rows) == 0 || rows[len(rows)-1].Row != s.Row {
			rows = append(rows, SeatMapRow{Row: s.Row})
		}
		rows[len(rows)-1].Seats = append(rows[len(rows)-1].Seats, cell)

		sum.Total++
		switch status {
		case seatStatusAvailable:
			sum.Available++
		case seatStatusHeld:
			sum.Held++
		case seatStatusSold:
			sum.Sold++
		case seatStatusBlocked:
			sum.Blocked++
		}
	}
	return rows, sum
}

// SeatMapHandler serves the per-showtime seat map.  The map is computed
// fresh on every request; hold liveness comes straight from expires_at in
// the query, never from a cache or a stale status column.
type SeatMapHandler struct {
	ShowtimeRepo *repository.ShowtimeRepo
	LayoutRepo   *repository.SeatLayoutRepo
	HoldRepo     *repository.SeatHoldRepo
}

// NewSeatMapHandler constructs a SeatMapHandler.
func NewSeatMapHandler(showtimeRepo *repository.ShowtimeRepo, layoutRepo *repository.SeatLayoutRepo, holdRepo *repository.SeatHoldRepo) *SeatMapHandler {
	if showtimeRepo == nil || layoutRepo == nil || holdRepo == nil {
		panic("nil repository passed to NewSeatMapHandler")
	}
	return &SeatMapHandler{ShowtimeRepo: showtimeRepo, LayoutRepo: layoutRepo, HoldRepo: holdRepo}
}

// GetSeatMap handles GET /v1/showtimes/:id/seat-map.  It returns the full
// seat grid with per-seat status and price.  Showtimes without a seat
// layout respond 409: they sell a plain seat count, not specific seats.
func (h *SeatMapHandler) GetSeatMap(c echo.Context) error {
	showtimeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()
	st, err := h.ShowtimeRepo.GetByID(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !st.HasSeatMap() {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrNoSeatMap.Error()})
	}
	seats, err := h.LayoutRepo.SeatsByLayout(ctx, *st.LayoutID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}
	live, err := h.HoldRepo.LiveHolds(ctx, showtimeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load holds"})
	}
	rows, summary := BuildSeatMap(seats, live, st.TicketPriceCents)
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id":  st.ID,
		"movie_title":  st.MovieTitle,
		"starts_at":    st.StartsAt.UTC().Format(time.RFC3339),
		"ticket_price": pricing.FormatCents(st.TicketPriceCents),
		"rows":         rows,
		"summary":      summary,
	})
}

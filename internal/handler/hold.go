package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumo-cinema/ticketing/internal/config"
	"github.com/lumo-cinema/ticketing/internal/model"
	"github.com/lumo-cinema/ticketing/internal/repository"
)

// HoldHandler serves seat hold creation and release.  Reserving seats is
// all-or-nothing: one transaction holds every requested seat or none of
// them, and the unique (showtime_id, seat_id) key decides races between
// overlapping requests.
type HoldHandler struct {
	ShowtimeRepo *repository.ShowtimeRepo
	LayoutRepo   *repository.SeatLayoutRepo
	HoldRepo     *repository.SeatHoldRepo
	Policy       config.BookingPolicy
}

// NewHoldHandler constructs a HoldHandler with the provided repositories
// and booking policy.
func NewHoldHandler(showtimeRepo *repository.ShowtimeRepo, layoutRepo *repository.SeatLayoutRepo, holdRepo *repository.SeatHoldRepo, policy config.BookingPolicy) *HoldHandler {
	if showtimeRepo == nil || layoutRepo == nil || holdRepo == nil {
		panic("nil repository passed to NewHoldHandler")
	}
	return &HoldHandler{ShowtimeRepo: showtimeRepo, LayoutRepo: layoutRepo, HoldRepo: holdRepo, Policy: policy}
}

// ReserveSeats handles POST /v1/showtimes/:id/reserve-seats.  The body
// carries the wire seat identifiers and an optional hold lifetime in
// minutes.  On success every requested seat is held for the caller and
// the shared expiry is returned; if any seat is taken the whole request
// fails with 409 and the list of unavailable seats.
func (h *HoldHandler) ReserveSeats(c echo.Context) error {
	customerID, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showtimeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body struct {
		SeatIDs    []string `json:"seat_ids"`
		TTLMinutes int      `json:"ttl_minutes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	seatIDs, badSeat, err := canonicalSeatIDs(body.SeatIDs)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed seat identifier", "seat_id": badSeat})
	}
	if len(seatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}
	if uint32(len(seatIDs)) > h.Policy.MaxSeatsPerBooking {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many seats requested"})
	}
	ttl := h.Policy.HoldTTLDefault
	if body.TTLMinutes != 0 {
		ttl = time.Duration(body.TTLMinutes) * time.Minute
		if ttl < h.Policy.HoldTTLMin || ttl > h.Policy.HoldTTLMax {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ttl_minutes out of range"})
		}
	}

	ctx := c.Request().Context()
	tx, err := h.ShowtimeRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	st, err := h.ShowtimeRepo.GetForUpdateTx(ctx, tx, showtimeID)
	if err != nil {
		if err == repository.ErrShowtimeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	now := time.Now().UTC()
	if !st.IsActive || !st.StartsAt.After(now) {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrShowtimePast.Error()})
	}
	if !st.HasSeatMap() {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrNoSeatMap.Error()})
	}

	// remove expired holds first so a stale row can never block the insert
	if _, err := h.HoldRepo.ExpireForShowtimeTx(ctx, tx, showtimeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cleanup expired holds"})
	}

	seats, err := h.LayoutRepo.ResolveSeatsTx(ctx, tx, *st.LayoutID, seatIDs)
	if err != nil {
		var unknown *repository.UnknownSeatError
		if errors.As(err, &unknown) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seat", "seat_id": unknown.SeatID})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve seats"})
	}
	for _, id := range seatIDs {
		seat := seats[id]
		if seat.IsBlocked() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat cannot be booked", "seat_id": id})
		}
	}

	live, err := h.HoldRepo.LiveSeatIDsTx(ctx, tx, showtimeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check seat availability"})
	}
	var unavailable []string
	for _, id := range seatIDs {
		if live[seats[id].ID] {
			unavailable = append(unavailable, id)
		}
	}
	if len(unavailable) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "some seats are unavailable",
			"unavailable": unavailable,
		})
	}

	expiresAt := now.Add(ttl)
	for _, id := range seatIDs {
		seat := seats[id]
		hold := &model.SeatHold{
			ShowtimeID: showtimeID,
			SeatID:     seat.ID,
			CustomerID: customerID,
			ExpiresAt:  expiresAt,
		}
		if err := h.HoldRepo.CreateTx(ctx, tx, hold, id); err != nil {
			// a concurrent transaction won this seat after our check
			if ua, ok := err.(*repository.SeatsUnavailableError); ok {
				return c.JSON(http.StatusConflict, echo.Map{
					"error":       "some seats are unavailable",
					"unavailable": ua.SeatIDs,
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create holds"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{
		"seat_ids":   seatIDs,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// ReleaseHolds handles DELETE /v1/showtimes/:id/holds.  It releases the
// caller's reserved holds on the showtime; holds already attached to a
// booking and confirmed holds are untouched.  Returns how many seats
// were freed, which may be zero.
func (h *HoldHandler) ReleaseHolds(c echo.Context) error {
	customerID, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showtimeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()
	tx, err := h.ShowtimeRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	released, err := h.HoldRepo.ReleaseByCustomerTx(ctx, tx, showtimeID, customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release holds"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}

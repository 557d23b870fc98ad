package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumo-cinema/ticketing/internal/config"
	"github.com/lumo-cinema/ticketing/internal/model"
	"github.com/lumo-cinema/ticketing/internal/pricing"
	"github.com/lumo-cinema/ticketing/internal/queue"
	"github.com/lumo-cinema/ticketing/internal/repository"
	queue_publisher "github.com/lumo-cinema/ticketing/internal/service"
)

// BookingHandler orchestrates booking creation, listing and
// cancellation.  A booking is created pending and only confirmed by its
// payment; all state changes run in a single transaction owned by the
// handler.
type BookingHandler struct {
	ShowtimeRepo *repository.ShowtimeRepo
	LayoutRepo   *repository.SeatLayoutRepo
	HoldRepo     *repository.SeatHoldRepo
	BookingRepo  *repository.BookingRepo
	CustomerRepo *repository.CustomerRepo
	PaymentRepo  *repository.PaymentRepo
	Policy       config.BookingPolicy
	Loyalty      pricing.Policy
}

// NewBookingHandler constructs a BookingHandler with its repositories
// and policies.
func NewBookingHandler(showtimeRepo *repository.ShowtimeRepo, layoutRepo *repository.SeatLayoutRepo, holdRepo *repository.SeatHoldRepo, bookingRepo *repository.BookingRepo, customerRepo *repository.CustomerRepo, paymentRepo *repository.PaymentRepo, policy config.BookingPolicy, loyalty pricing.Policy) *BookingHandler {
	if showtimeRepo == nil || layoutRepo == nil || holdRepo == nil || bookingRepo == nil || customerRepo == nil || paymentRepo == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{
		ShowtimeRepo: showtimeRepo,
		LayoutRepo:   layoutRepo,
		HoldRepo:     holdRepo,
		BookingRepo:  bookingRepo,
		CustomerRepo: customerRepo,
		PaymentRepo:  paymentRepo,
		Policy:       policy,
		Loyalty:      loyalty,
	}
}

// CreateBooking handles POST /v1/bookings.  Seat-mapped showtimes
// require seat_ids backed by the caller's live holds; counter showtimes
// take number_of_seats instead.  The transaction validates holds or
// capacity, prices the seats, deducts loyalty points and persists the
// pending booking; any failure rolls the whole thing back.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	customerID, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ShowtimeID        uint64   `json:"showtime_id"`
		SeatIDs           []string `json:"seat_ids"`
		NumberOfSeats     uint32   `json:"number_of_seats"`
		LoyaltyPointsUsed uint32   `json:"loyalty_points_used"`
		SpecialRequests   string   `json:"special_requests"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ShowtimeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_id is required"})
	}
	seatIDs, badSeat, err := canonicalSeatIDs(body.SeatIDs)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed seat identifier", "seat_id": badSeat})
	}
	if len(seatIDs) == 0 && body.NumberOfSeats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids or number_of_seats is required"})
	}
	if len(seatIDs) > 0 && body.NumberOfSeats != 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids and number_of_seats are mutually exclusive"})
	}
	seatCount := body.NumberOfSeats
	if len(seatIDs) > 0 {
		seatCount = uint32(len(seatIDs))
	}
	if seatCount > h.Policy.MaxSeatsPerBooking {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many seats requested"})
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

	st, err := h.ShowtimeRepo.GetForUpdateTx(ctx, tx, body.ShowtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	now := time.Now().UTC()
	if !st.IsActive || !st.StartsAt.After(now) {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrShowtimePast.Error()})
	}

	var unitPrices []int64
	var seatNumbers []string
	var holdIDs []uint64

	if len(seatIDs) > 0 {
		if !st.HasSeatMap() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrNoSeatMap.Error()})
		}
		// drop expired rows first so the re-validation below sees only
		// genuinely live holds
		if _, err := h.HoldRepo.ExpireForShowtimeTx(ctx, tx, st.ID); err != nil {
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
		seatDBIDs := make([]uint64, 0, len(seatIDs))
		for _, id := range seatIDs {
			seatDBIDs = append(seatDBIDs, seats[id].ID)
		}
		holds, err := h.HoldRepo.ReservedHoldsForSeatsTx(ctx, tx, st.ID, customerID, seatDBIDs)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load holds"})
		}
		held := make(map[string]repository.HoldWithSeat, len(holds))
		for _, hw := range holds {
			held[hw.SeatID] = hw
		}
		for _, id := range seatIDs {
			hw, ok := held[id]
			if !ok {
				return c.JSON(http.StatusConflict, echo.Map{"error": "no active hold for seat", "seat_id": id})
			}
			if hw.Hold.IsExpired(now) {
				expired := &repository.HoldExpiredError{SeatID: id}
				return c.JSON(http.StatusConflict, echo.Map{"error": expired.Error(), "seat_id": id})
			}
			if hw.Hold.BookingID != nil {
				return c.JSON(http.StatusConflict, echo.Map{"error": "seat already belongs to a booking", "seat_id": id})
			}
			holdIDs = append(holdIDs, hw.Hold.ID)
			unitPrices = append(unitPrices, pricing.SeatPriceCents(st.TicketPriceCents, seats[id].PriceMultiplierPct))
			seatNumbers = append(seatNumbers, id)
		}
	} else {
		if st.HasSeatMap() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime requires seat selection"})
		}
		if st.AvailableSeats < seatCount {
			return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrInsufficientSeats.Error()})
		}
		for i := uint32(0); i < seatCount; i++ {
			unitPrices = append(unitPrices, st.TicketPriceCents)
		}
	}

	if body.LoyaltyPointsUsed > 0 {
		if _, err := h.CustomerRepo.GetForUpdateTx(ctx, tx, customerID); err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}

	quote := h.Loyalty.BookingTotal(unitPrices, body.LoyaltyPointsUsed)
	booking := &model.Booking{
		CustomerID:        customerID,
		ShowtimeID:        st.ID,
		NumberOfSeats:     seatCount,
		SeatNumbers:       seatNumbers,
		SubtotalCents:     quote.SubtotalCents,
		DiscountCents:     quote.DiscountCents,
		TotalCents:        quote.TotalCents,
		BasePriceCents:    quote.AvgUnitCents,
		LoyaltyPointsUsed: body.LoyaltyPointsUsed,
		SpecialRequests:   body.SpecialRequests,
	}
	if err := h.BookingRepo.CreateTx(ctx, tx, booking, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := h.HoldRepo.AttachBookingTx(ctx, tx, holdIDs, booking.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to attach holds"})
	}
	if body.LoyaltyPointsUsed > 0 {
		// points leave the balance now and are not returned on
		// cancellation; the guarded UPDATE is the balance check
		if err := h.CustomerRepo.DeductPointsTx(ctx, tx, customerID, body.LoyaltyPointsUsed); err != nil {
			if errors.Is(err, repository.ErrInsufficientPoints) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrInsufficientPoints.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deduct loyalty points"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, bookingView(booking))
}

// ListBookings handles GET /v1/bookings, returning the caller's
// bookings, newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	customerID, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.BookingRepo.ListByCustomer(c.Request().Context(), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	items := make([]echo.Map, 0, len(bookings))
	for i := range bookings {
		items = append(items, bookingView(&bookings[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id.  A booking owned by another
// customer is reported as not found.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	customerID, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.BookingRepo.GetForCustomer(c.Request().Context(), bookingID, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, bookingView(booking))
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  Only confirmed
// bookings further than the cutoff from their showtime can be cancelled;
// anything else gets a 400 refusal.  Cancellation releases held seats
// (or restores the counter), refunds the paid amount and keeps the spent
// loyalty points.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	customerID, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body) // reason is optional

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

	booking, err := h.BookingRepo.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if booking.CustomerID != customerID {
		// existence of other customers' bookings is not leaked
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	st, err := h.ShowtimeRepo.GetForUpdateTx(ctx, tx, booking.ShowtimeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	now := time.Now().UTC()
	if !booking.CanCancel(st.StartsAt, now, h.Policy.CancellationCutoff) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking cannot be cancelled"})
	}
	if err := booking.Cancel(now); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking cannot be cancelled"})
	}
	if err := h.BookingRepo.UpdateStatusTx(ctx, tx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}

	if st.HasSeatMap() {
		if _, err := h.HoldRepo.DeleteByBookingTx(ctx, tx, booking.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release seats"})
		}
	} else {
		if err := h.ShowtimeRepo.RestoreAvailableTx(ctx, tx, st.ID, booking.NumberOfSeats); err != nil {
			if errors.Is(err, repository.ErrInvariant) {
				log.Printf("cancel booking %d: %v", booking.ID, err)
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to restore seats"})
		}
	}

	var refundCents int64
	payment, err := h.PaymentRepo.GetByBookingForUpdateTx(ctx, tx, booking.ID)
	if err != nil && !errors.Is(err, repository.ErrPaymentNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if payment != nil && payment.Status == model.PaymentStatusCompleted {
		refundCents = payment.AmountCents
		payment.Status = model.PaymentStatusRefunded
		if err := h.PaymentRepo.UpdateStatusTx(ctx, tx, payment); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record refund"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	event := queue.BookingCancelledEvent{
		BookingID:        booking.ID,
		BookingReference: booking.Reference,
		CustomerID:       booking.CustomerID,
		ShowtimeID:       booking.ShowtimeID,
		RefundCents:      refundCents,
		Reason:           body.Reason,
		CancelledAt:      now.Format(time.RFC3339),
	}
	_ = queue_publisher.PublishBookingCancelled(ctx, event)

	return c.JSON(http.StatusOK, echo.Map{
		"booking_reference": booking.Reference,
		"status":            booking.Status,
		"refund_amount":     pricing.FormatCents(refundCents),
	})
}

// bookingView renders a booking for JSON responses, with money fields
// formatted as decimal strings alongside the raw cent amounts.
func bookingView(b *model.Booking) echo.Map {
	v := echo.Map{
		"id":                  b.ID,
		"booking_reference":   b.Reference,
		"showtime_id":         b.ShowtimeID,
		"number_of_seats":     b.NumberOfSeats,
		"seat_numbers":        b.SeatNumbers,
		"subtotal":            pricing.FormatCents(b.SubtotalCents),
		"discount":            pricing.FormatCents(b.DiscountCents),
		"total":               pricing.FormatCents(b.TotalCents),
		"base_price_per_seat": pricing.FormatCents(b.BasePriceCents),
		"loyalty_points_used": b.LoyaltyPointsUsed,
		"special_requests":    b.SpecialRequests,
		"status":              b.Status,
		"created_at":          b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.ConfirmedAt != nil {
		v["confirmed_at"] = b.ConfirmedAt.UTC().Format(time.RFC3339)
	}
	if b.CancelledAt != nil {
		v["cancelled_at"] = b.CancelledAt.UTC().Format(time.RFC3339)
	}
	return v
}

package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lumo-cinema/ticketing/internal/model"
	"github.com/lumo-cinema/ticketing/internal/pricing"
	"github.com/lumo-cinema/ticketing/internal/queue"
	"github.com/lumo-cinema/ticketing/internal/repository"
	queue_publisher "github.com/lumo-cinema/ticketing/internal/service"
)

// PaymentHandler processes payments for pending bookings.  The
// completion of a payment is what confirms its booking: seats move from
// held to sold (or the availability counter drops) in the same
// transaction that marks the payment completed.  The processor here is a
// demo that always succeeds with a generated transaction id; a real
// gateway would call back into the same confirmation path.
type PaymentHandler struct {
	ShowtimeRepo *repository.ShowtimeRepo
	HoldRepo     *repository.SeatHoldRepo
	BookingRepo  *repository.BookingRepo
	CustomerRepo *repository.CustomerRepo
	PaymentRepo  *repository.PaymentRepo
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(showtimeRepo *repository.ShowtimeRepo, holdRepo *repository.SeatHoldRepo, bookingRepo *repository.BookingRepo, customerRepo *repository.CustomerRepo, paymentRepo *repository.PaymentRepo) *PaymentHandler {
	if showtimeRepo == nil || holdRepo == nil || bookingRepo == nil || customerRepo == nil || paymentRepo == nil {
		panic("nil repository passed to NewPaymentHandler")
	}
	return &PaymentHandler{
		ShowtimeRepo: showtimeRepo,
		HoldRepo:     holdRepo,
		BookingRepo:  bookingRepo,
		CustomerRepo: customerRepo,
		PaymentRepo:  paymentRepo,
	}
}

// CreatePayment handles POST /v1/payments.  The request is idempotent:
// paying an already-confirmed booking returns the existing payment with
// 200 instead of failing, so an at-least-once payment callback can be
// retried safely.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	customerID, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		BookingID     uint64 `json:"booking_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.BookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id is required"})
	}
	if !model.ValidPaymentMethod(body.PaymentMethod) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment method"})
	}

	ctx := c.Request().Context()
	tx, err := h.BookingRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booking, err := h.BookingRepo.GetForUpdateTx(ctx, tx, body.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if booking.CustomerID != customerID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}

	// repeat of an already-settled payment resolves locally
	if booking.Status == model.BookingStatusConfirmed {
		payment, err := h.PaymentRepo.GetByBookingID(ctx, booking.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return c.JSON(http.StatusOK, paymentView(payment, booking))
	}
	if booking.Status != model.BookingStatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be paid", "status": booking.Status})
	}

	st, err := h.ShowtimeRepo.GetForUpdateTx(ctx, tx, booking.ShowtimeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	now := time.Now().UTC()
	if !st.IsActive || !st.StartsAt.After(now) {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrShowtimePast.Error()})
	}

	// seats must still be secured before money changes hands
	if st.HasSeatMap() {
		holds, err := h.HoldRepo.HoldsByBookingTx(ctx, tx, booking.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load holds"})
		}
		var expired []string
		for _, hw := range holds {
			if hw.Hold.IsExpired(now) {
				expired = append(expired, hw.SeatID)
			}
		}
		if len(expired) > 0 || uint32(len(holds)) != booking.NumberOfSeats {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":   "seat holds have expired",
				"expired": expired,
			})
		}
		if err := h.HoldRepo.ConfirmByBookingTx(ctx, tx, booking.ID, len(holds), now); err != nil {
			if errors.Is(err, repository.ErrInvariant) {
				log.Printf("payment: confirm holds for booking %d: %v", booking.ID, err)
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm holds"})
		}
	} else {
		if st.AvailableSeats < booking.NumberOfSeats {
			return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrInsufficientSeats.Error()})
		}
		if err := h.ShowtimeRepo.DecrementAvailableTx(ctx, tx, st.ID, booking.NumberOfSeats); err != nil {
			if errors.Is(err, repository.ErrInvariant) {
				log.Printf("payment: decrement seats for booking %d: %v", booking.ID, err)
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to allocate seats"})
		}
	}

	payment, err := h.PaymentRepo.GetByBookingForUpdateTx(ctx, tx, booking.ID)
	if err != nil && !errors.Is(err, repository.ErrPaymentNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if payment == nil {
		payment = &model.Payment{
			BookingID:   booking.ID,
			AmountCents: booking.TotalCents,
			Method:      body.PaymentMethod,
			Status:      model.PaymentStatusPending,
		}
		if err := h.PaymentRepo.CreateTx(ctx, tx, payment); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create payment"})
		}
	}
	if err := payment.MarkCompleted("txn_"+uuid.NewString(), now); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment cannot be completed", "status": payment.Status})
	}
	if err := h.PaymentRepo.UpdateStatusTx(ctx, tx, payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update payment"})
	}

	if err := booking.Confirm(now); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be confirmed", "status": booking.Status})
	}
	if err := h.BookingRepo.UpdateStatusTx(ctx, tx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}

	pointsEarned := pricing.PointsEarned(booking.TotalCents)
	if err := h.CustomerRepo.AddPointsTx(ctx, tx, booking.CustomerID, pointsEarned); err != nil {
		if errors.Is(err, repository.ErrInvariant) {
			log.Printf("payment: award points for booking %d: %v", booking.ID, err)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to award loyalty points"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	event := queue.BookingConfirmedEvent{
		BookingID:        booking.ID,
		BookingReference: booking.Reference,
		CustomerID:       booking.CustomerID,
		ShowtimeID:       booking.ShowtimeID,
		MovieTitle:       st.MovieTitle,
		SeatNumbers:      booking.SeatNumbers,
		NumberOfSeats:    booking.NumberOfSeats,
		TotalCents:       booking.TotalCents,
		PointsEarned:     pointsEarned,
		ConfirmedAt:      now.Format(time.RFC3339),
	}
	_ = queue_publisher.PublishBookingConfirmed(ctx, event)

	return c.JSON(http.StatusCreated, paymentView(payment, booking))
}

// ListPayments handles GET /v1/payments, returning the caller's
// payments, newest first.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	customerID, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	payments, err := h.PaymentRepo.ListByCustomer(c.Request().Context(), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payments"})
	}
	items := make([]echo.Map, 0, len(payments))
	for i := range payments {
		p := &payments[i]
		v := echo.Map{
			"payment_id":     p.ID,
			"booking_id":     p.BookingID,
			"amount":         pricing.FormatCents(p.AmountCents),
			"payment_method": p.Method,
			"status":         p.Status,
			"transaction_id": p.TransactionID,
		}
		if p.ProcessedAt != nil {
			v["processed_at"] = p.ProcessedAt.UTC().Format(time.RFC3339)
		}
		items = append(items, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// paymentView renders a payment together with its booking's status.
func paymentView(p *model.Payment, b *model.Booking) echo.Map {
	v := echo.Map{
		"payment_id":     p.ID,
		"booking_id":     p.BookingID,
		"amount":         pricing.FormatCents(p.AmountCents),
		"payment_method": p.Method,
		"status":         p.Status,
		"transaction_id": p.TransactionID,
		"booking_status": b.Status,
	}
	if p.ProcessedAt != nil {
		v["processed_at"] = p.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return v
}

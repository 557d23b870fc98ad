package model

import "time"

// Payment statuses.
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
	PaymentStatusRefunded   = "refunded"
)

// Payment methods accepted on the wire.
const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
	PaymentMethodPayPal     = "paypal"
	PaymentMethodApplePay   = "apple_pay"
	PaymentMethodGooglePay  = "google_pay"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPayPal,
		PaymentMethodApplePay, PaymentMethodGooglePay:
		return true
	}
	return false
}

// Payment tracks the 1:1 payment record for a booking.  Completion of a
// payment is what confirms its booking; the gateway integration itself
// lives outside the core, which only consumes the completion callback.
type Payment struct {
	ID            uint64     // payments.id
	BookingID     uint64     // payments.booking_id (unique)
	AmountCents   int64      // payments.amount_cents
	Method        string     // payments.payment_method
	Status        string     // payments.status
	TransactionID string     // payments.transaction_id
	CreatedAt     time.Time  // payments.created_at
	ProcessedAt   *time.Time // payments.processed_at (nullable)
}

// MarkCompleted transitions pending|processing -> completed and records
// the processor transaction id.  Completing an already-completed payment
// is a no-op to tolerate repeated callbacks.
func (p *Payment) MarkCompleted(transactionID string, now time.Time) error {
	switch p.Status {
	case PaymentStatusCompleted:
		return nil
	case PaymentStatusPending, PaymentStatusProcessing:
		p.Status = PaymentStatusCompleted
		p.ProcessedAt = &now
		if transactionID != "" {
			p.TransactionID = transactionID
		}
		return nil
	}
	return ErrInvalidState
}

// MarkFailed transitions pending|processing -> failed.
func (p *Payment) MarkFailed(now time.Time) error {
	switch p.Status {
	case PaymentStatusPending, PaymentStatusProcessing:
		p.Status = PaymentStatusFailed
		p.ProcessedAt = &now
		return nil
	}
	return ErrInvalidState
}

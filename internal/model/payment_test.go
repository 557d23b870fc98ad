package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkCompleted(t *testing.T) {
	now := time.Now().UTC()
	p := Payment{Status: PaymentStatusPending}
	require.NoError(t, p.MarkCompleted("txn_abc", now))
	assert.Equal(t, PaymentStatusCompleted, p.Status)
	assert.Equal(t, "txn_abc", p.TransactionID)
	require.NotNil(t, p.ProcessedAt)

	// repeat completion keeps the original transaction id
	require.NoError(t, p.MarkCompleted("txn_other", now.Add(time.Minute)))
	assert.Equal(t, "txn_abc", p.TransactionID)

	failed := Payment{Status: PaymentStatusFailed}
	assert.ErrorIs(t, failed.MarkCompleted("txn_x", now), ErrInvalidState)
}

func TestMarkFailed(t *testing.T) {
	now := time.Now().UTC()
	p := Payment{Status: PaymentStatusProcessing}
	require.NoError(t, p.MarkFailed(now))
	assert.Equal(t, PaymentStatusFailed, p.Status)

	done := Payment{Status: PaymentStatusCompleted}
	assert.ErrorIs(t, done.MarkFailed(now), ErrInvalidState)
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentMethodCreditCard))
	assert.True(t, ValidPaymentMethod(PaymentMethodGooglePay))
	assert.False(t, ValidPaymentMethod("cash"))
	assert.False(t, ValidPaymentMethod(""))
}

package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *RefundPolicySettings {
	return &RefundPolicySettings{
		DepositEnabled:                      true,
		FullPaymentFullRefundDays:           7,
		FullPaymentPartialRefundDays:        3,
		FullPaymentPartialRefundPercentage:  decimal.RequireFromString("50.00"),
		FullPaymentMinimalRefundDays:        1,
		FullPaymentMinimalRefundPercentage:  decimal.RequireFromString("10.00"),
		DepositFullRefundDays:               14,
		DepositPartialRefundDays:            7,
		DepositPartialRefundPercentage:      decimal.RequireFromString("25.00"),
		DepositMinimalRefundDays:            3,
		DepositMinimalRefundPercentage:      decimal.RequireFromString("5.00"),
		SalesEnableDepositRefund:            true,
		SalesEnableDepositRefundGracePeriod: true,
		SalesDepositRefundGracePeriodHours:  24,
	}
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, validSettings().Validate())

	t.Run("tier ordering full payment track", func(t *testing.T) {
		s := validSettings()
		s.FullPaymentPartialRefundDays = 10
		assert.Error(t, s.Validate())
	})

	t.Run("tier ordering deposit track", func(t *testing.T) {
		s := validSettings()
		s.DepositMinimalRefundDays = 30
		assert.Error(t, s.Validate())
	})

	t.Run("percentage above 100", func(t *testing.T) {
		s := validSettings()
		s.FullPaymentPartialRefundPercentage = decimal.RequireFromString("101")
		assert.Error(t, s.Validate())
	})

	t.Run("negative percentage", func(t *testing.T) {
		s := validSettings()
		s.DepositMinimalRefundPercentage = decimal.RequireFromString("-1")
		assert.Error(t, s.Validate())
	})

	t.Run("equal thresholds allowed", func(t *testing.T) {
		s := validSettings()
		s.FullPaymentFullRefundDays = 3
		s.FullPaymentPartialRefundDays = 3
		s.FullPaymentMinimalRefundDays = 3
		assert.NoError(t, s.Validate())
	})
}

func TestSettingsSnapshot(t *testing.T) {
	snap := validSettings().Snapshot()

	require.False(t, snap.IsEmpty())
	assert.Equal(t, 7, snap.Int("cancellation_full_payment_full_refund_days"))
	assert.Equal(t, 14, snap.Int("cancellation_deposit_full_refund_days"))
	assert.Equal(t, 24, snap.Int("sales_deposit_refund_grace_period_hours"))
	assert.True(t, snap.Bool("sales_enable_deposit_refund"))

	// Percentages travel as strings.
	assert.Equal(t, "50.00", snap["cancellation_full_payment_partial_refund_percentage"])
	assert.Equal(t, "5.00", snap["cancellation_deposit_minimal_refund_percentage"])
}

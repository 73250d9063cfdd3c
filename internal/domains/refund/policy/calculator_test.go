package policy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingmodel "motoshop-backend/internal/domains/booking/model"
)

func testSnapshot() Snapshot {
	return Snapshot{
		"deposit_enabled": true,
		"cancellation_full_payment_full_refund_days":          7,
		"cancellation_full_payment_partial_refund_days":       3,
		"cancellation_full_payment_partial_refund_percentage": "50.00",
		"cancellation_full_payment_minimal_refund_days":       1,
		"cancellation_full_payment_minimal_refund_percentage": "10.00",
		"cancellation_deposit_full_refund_days":               14,
		"cancellation_deposit_partial_refund_days":            7,
		"cancellation_deposit_partial_refund_percentage":      "25.00",
		"cancellation_deposit_minimal_refund_days":            3,
		"cancellation_deposit_minimal_refund_percentage":      "5.00",
		"sales_enable_deposit_refund":                         true,
		"sales_enable_deposit_refund_grace_period":            true,
		"sales_deposit_refund_grace_period_hours":             24,
	}
}

func hireBooking(paid string, pickupAt time.Time) *bookingmodel.Booking {
	t := pickupAt
	return &bookingmodel.Booking{
		Type:          bookingmodel.BookingTypeHire,
		PaymentMethod: bookingmodel.PaymentMethodOnlineFull,
		PaymentStatus: bookingmodel.PaymentStatusPaid,
		AmountPaid:    decimal.RequireFromString(paid),
		PickupAt:      &t,
	}
}

func salesBooking(paid string, createdAt time.Time) *bookingmodel.Booking {
	return &bookingmodel.Booking{
		Type:          bookingmodel.BookingTypeSales,
		PaymentMethod: bookingmodel.PaymentMethodOnlineDeposit,
		PaymentStatus: bookingmodel.PaymentStatusDepositPaid,
		AmountPaid:    decimal.RequireFromString(paid),
		CreatedAt:     createdAt,
	}
}

func TestCalculateDayTiers(t *testing.T) {
	pickup := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	booking := hireBooking("500.00", pickup)

	tests := []struct {
		name         string
		daysBefore   int
		wantAmount   string
		wantInPolicy string
	}{
		{"full refund at 8 days", 8, "500.00", "Full Refund"},
		{"full refund at exactly 7 days", 7, "500.00", "Full Refund"},
		{"partial refund at 4 days", 4, "250.00", "Partial Refund Policy (50.00%)"},
		{"partial refund at exactly 3 days", 3, "250.00", "Partial Refund Policy (50.00%)"},
		{"minimal refund at 2 days", 2, "50.00", "Minimal Refund Policy (10.00%)"},
		{"minimal refund at exactly 1 day", 1, "50.00", "Minimal Refund Policy (10.00%)"},
		{"no refund same day", 0, "0.00", "No Refund"},
		{"no refund after pickup", -2, "0.00", "No Refund"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asOf := pickup.Add(-time.Duration(tt.daysBefore) * 24 * time.Hour)
			result := Calculate(booking, testSnapshot(), asOf)

			assert.Equal(t, tt.wantAmount, result.EntitledAmount.StringFixed(2))
			assert.Contains(t, result.PolicyApplied, tt.wantInPolicy)
			assert.Contains(t, result.PolicyApplied, "Full Payment Policy")
			assert.Equal(t, tt.daysBefore, result.DaysBeforeDeadline)
		})
	}
}

func TestCalculateFlooringPartialDays(t *testing.T) {
	pickup := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	booking := hireBooking("500.00", pickup)

	// 6 days 23 hours out floors to 6 days, which is below the 7-day full tier.
	asOf := pickup.Add(-(6*24 + 23) * time.Hour)
	result := Calculate(booking, testSnapshot(), asOf)

	assert.Equal(t, 6, result.DaysBeforeDeadline)
	assert.Equal(t, "250.00", result.EntitledAmount.StringFixed(2))
}

func TestCalculateDepositTrackSelection(t *testing.T) {
	pickup := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	asOf := pickup.Add(-8 * 24 * time.Hour)

	byMethod := hireBooking("200.00", pickup)
	byMethod.PaymentMethod = bookingmodel.PaymentMethodOnlineDeposit

	byStatus := hireBooking("200.00", pickup)
	byStatus.PaymentStatus = bookingmodel.PaymentStatusDepositPaid

	for name, booking := range map[string]*bookingmodel.Booking{
		"by payment method": byMethod,
		"by payment status": byStatus,
	} {
		t.Run(name, func(t *testing.T) {
			result := Calculate(booking, testSnapshot(), asOf)

			// 8 days is a full refund on the full-payment track but only a
			// partial (25%) on the deposit track.
			assert.Contains(t, result.PolicyApplied, "Deposit Payment Policy")
			assert.Equal(t, "50.00", result.EntitledAmount.StringFixed(2))
		})
	}
}

func TestCalculateEmptySnapshot(t *testing.T) {
	pickup := time.Now().Add(30 * 24 * time.Hour)
	booking := hireBooking("500.00", pickup)

	result := Calculate(booking, Snapshot{}, time.Now())

	assert.True(t, result.EntitledAmount.IsZero())
	assert.Equal(t, "N/A", result.PolicyApplied)
	assert.Equal(t, "N/A", result.Percentage)
	assert.Equal(t, "No refund policy snapshot available for this booking's payment.", result.Details)
}

func TestCalculateManualPaymentMethod(t *testing.T) {
	pickup := time.Now().Add(30 * 24 * time.Hour)
	booking := hireBooking("500.00", pickup)
	booking.PaymentMethod = bookingmodel.PaymentMethodInStoreFull

	result := Calculate(booking, testSnapshot(), time.Now())

	assert.True(t, result.EntitledAmount.IsZero())
	assert.Equal(t, "Manual Refund Policy for In-Store Full Payment", result.PolicyApplied)
}

func TestCalculateGracePeriod(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := salesBooking("100.00", createdAt)

	t.Run("within grace period", func(t *testing.T) {
		result := Calculate(booking, testSnapshot(), createdAt.Add(12*time.Hour))

		assert.Equal(t, "100.00", result.EntitledAmount.StringFixed(2))
		assert.Equal(t, "Full Refund Policy (Within 24 hour grace period)", result.PolicyApplied)
		assert.Equal(t, "Cancellation occurred 12.00 hours after booking creation.", result.Details)
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		result := Calculate(booking, testSnapshot(), createdAt.Add(24*time.Hour))
		assert.Equal(t, "100.00", result.EntitledAmount.StringFixed(2))
	})

	t.Run("one minute past the boundary", func(t *testing.T) {
		result := Calculate(booking, testSnapshot(), createdAt.Add(24*time.Hour+time.Minute))

		assert.True(t, result.EntitledAmount.IsZero())
		assert.Equal(t, "No Refund Policy (Grace Period Expired)", result.PolicyApplied)
	})

	t.Run("cancellation before creation counts as within", func(t *testing.T) {
		result := Calculate(booking, testSnapshot(), createdAt.Add(-time.Hour))
		assert.Equal(t, "100.00", result.EntitledAmount.StringFixed(2))
	})

	t.Run("refunds disabled", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot["sales_enable_deposit_refund"] = false

		result := Calculate(booking, snapshot, createdAt.Add(time.Hour))

		assert.True(t, result.EntitledAmount.IsZero())
		assert.Equal(t, "No Refund Policy (Refunds Disabled)", result.PolicyApplied)
	})

	t.Run("grace period disabled", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot["sales_enable_deposit_refund_grace_period"] = false

		result := Calculate(booking, snapshot, createdAt.Add(1000*time.Hour))

		assert.Equal(t, "100.00", result.EntitledAmount.StringFixed(2))
		assert.Equal(t, "Full Refund Policy (Grace Period Disabled)", result.PolicyApplied)
	})
}

func TestCalculateMonotoneAndBounded(t *testing.T) {
	pickup := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	booking := hireBooking("333.33", pickup)
	paid := booking.AmountPaid

	prev := paid.Add(decimal.NewFromInt(1))
	for days := 15; days >= -5; days-- {
		asOf := pickup.Add(-time.Duration(days) * 24 * time.Hour)
		result := Calculate(booking, testSnapshot(), asOf)

		require.True(t, result.EntitledAmount.LessThanOrEqual(prev),
			"entitlement must not increase as the deadline approaches (days=%d)", days)
		require.True(t, result.EntitledAmount.GreaterThanOrEqual(decimal.Zero))
		require.True(t, result.EntitledAmount.LessThanOrEqual(paid))
		prev = result.EntitledAmount
	}
}

func TestSnapshotPercentParsing(t *testing.T) {
	s := Snapshot{
		"as_string": "12.50",
		"as_number": 12.5,
		"bad":       "not-a-number",
	}

	assert.True(t, decimal.RequireFromString("12.50").Equal(s.Percent("as_string")))
	assert.True(t, decimal.NewFromFloat(12.5).Equal(s.Percent("as_number")))
	assert.True(t, s.Percent("bad").IsZero())
	assert.True(t, s.Percent("missing").IsZero())
}

func TestFromJSON(t *testing.T) {
	s, err := FromJSON([]byte(`{"cancellation_full_payment_full_refund_days": 7}`))
	require.NoError(t, err)
	assert.Equal(t, 7, s.Int("cancellation_full_payment_full_refund_days"))

	empty, err := FromJSON(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = FromJSON([]byte(`{broken`))
	assert.Error(t, err)
}

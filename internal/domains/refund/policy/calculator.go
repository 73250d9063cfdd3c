package policy

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	bookingmodel "motoshop-backend/internal/domains/booking/model"
)

// =====================================================
// REFUND POLICY ENGINE
// =====================================================

var oneHundred = decimal.NewFromInt(100)

// Result is the full output of a refund entitlement calculation. It is
// persisted verbatim into RefundRequest.refund_calculation_details so the
// decision stays auditable after the policy changes.
type Result struct {
	EntitledAmount     decimal.Decimal `json:"entitled_amount"`
	PolicyApplied      string          `json:"policy_applied"`
	Percentage         string          `json:"percentage"`
	Details            string          `json:"details"`
	DaysBeforeDeadline int             `json:"days_before_deadline"`

	// Grace-period variant only.
	HoursSinceCreation string `json:"time_since_booking_creation_hours,omitempty"`
}

// Calculate computes the refund a customer is entitled to when cancelling
// booking at asOf, under the policy snapshot captured on the payment.
// Hire and service bookings use the day-tiered algorithm against their
// schedule anchor; sales bookings use the grace-period variant against the
// booking creation time. Pure function, no side effects.
func Calculate(booking *bookingmodel.Booking, snapshot Snapshot, asOf time.Time) Result {
	if snapshot.IsEmpty() {
		return Result{
			EntitledAmount: decimal.Zero.Round(2),
			PolicyApplied:  "N/A",
			Percentage:     "N/A",
			Details:        "No refund policy snapshot available for this booking's payment.",
		}
	}

	if !booking.IsGatewayPaid() {
		return Result{
			EntitledAmount: decimal.Zero.Round(2),
			PolicyApplied:  fmt.Sprintf("Manual Refund Policy for %s", booking.DisplayPaymentMethod()),
			Percentage:     "0.00",
			Details:        fmt.Sprintf("%s payments are settled outside the payment gateway and refunded manually by staff.", booking.DisplayPaymentMethod()),
		}
	}

	if booking.Type == bookingmodel.BookingTypeSales {
		return calculateGracePeriod(booking, snapshot, asOf)
	}

	return calculateDayTiered(booking, snapshot, asOf)
}

// calculateDayTiered applies the day-threshold tiers for hire and service
// bookings. Days are floored, so a cancellation 6 days 23 hours out counts
// as 6 days; past-anchor cancellations go negative and fall through to the
// no-refund tier.
func calculateDayTiered(booking *bookingmodel.Booking, snapshot Snapshot, asOf time.Time) Result {
	anchor := booking.RefundAnchor()
	if anchor == nil {
		return Result{
			EntitledAmount: decimal.Zero.Round(2),
			PolicyApplied:  "N/A",
			Percentage:     "N/A",
			Details:        "Booking has no scheduled date to measure the cancellation against.",
		}
	}

	days := int(math.Floor(anchor.Sub(asOf).Hours() / 24))

	depositTrack := booking.IsDepositTrack()
	prefix := TrackPrefix(depositTrack)
	label := TrackLabel(depositTrack)

	fullDays := snapshot.Int(prefix + SuffixFullRefundDays)
	partialDays := snapshot.Int(prefix + SuffixPartialRefundDays)
	partialPct := snapshot.Percent(prefix + SuffixPartialRefundPercentage)
	minimalDays := snapshot.Int(prefix + SuffixMinimalRefundDays)
	minimalPct := snapshot.Percent(prefix + SuffixMinimalRefundPercentage)

	var pct decimal.Decimal
	var policy string
	switch {
	case days >= fullDays:
		pct = oneHundred
		policy = label + ": Full Refund Policy"
	case days >= partialDays:
		pct = partialPct
		policy = fmt.Sprintf("%s: Partial Refund Policy (%s%%)", label, partialPct.StringFixed(2))
	case days >= minimalDays:
		pct = minimalPct
		policy = fmt.Sprintf("%s: Minimal Refund Policy (%s%%)", label, minimalPct.StringFixed(2))
	default:
		pct = decimal.Zero
		policy = label + ": No Refund Policy (Too close to drop-off or after drop-off)"
	}

	paid := booking.AmountPaid
	amount := paid.Mul(pct).Div(oneHundred)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(paid) {
		amount = paid
	}
	amount = amount.Round(2)

	return Result{
		EntitledAmount:     amount,
		PolicyApplied:      policy,
		Percentage:         pct.StringFixed(2),
		DaysBeforeDeadline: days,
		Details: fmt.Sprintf("Cancellation %d days before drop-off. Policy: %s. Calculated: %s (%s%% of %s).",
			days, policy, amount.StringFixed(2), pct.StringFixed(2), paid.StringFixed(2)),
	}
}

// calculateGracePeriod applies the hours-based variant for sales deposits.
// The grace window is inclusive of its boundary, and a cancellation stamped
// before the booking's creation time still counts as within the window.
func calculateGracePeriod(booking *bookingmodel.Booking, snapshot Snapshot, asOf time.Time) Result {
	since := asOf.Sub(booking.CreatedAt)
	sinceHours := fmt.Sprintf("%.2f", since.Hours())
	details := fmt.Sprintf("Cancellation occurred %s hours after booking creation.", sinceHours)

	zero := func(policy string) Result {
		return Result{
			EntitledAmount:     decimal.Zero.Round(2),
			PolicyApplied:      policy,
			Percentage:         "0.00",
			Details:            details,
			HoursSinceCreation: sinceHours,
		}
	}
	full := func(policy string) Result {
		return Result{
			EntitledAmount:     booking.AmountPaid.Round(2),
			PolicyApplied:      policy,
			Percentage:         "100.00",
			Details:            details,
			HoursSinceCreation: sinceHours,
		}
	}

	if !snapshot.Bool(KeySalesEnableDepositRefund) {
		return zero("No Refund Policy (Refunds Disabled)")
	}

	if !snapshot.Bool(KeySalesEnableGracePeriod) {
		return full("Full Refund Policy (Grace Period Disabled)")
	}

	graceHours := snapshot.Int(KeySalesGracePeriodHours)
	if since <= time.Duration(graceHours)*time.Hour {
		return full(fmt.Sprintf("Full Refund Policy (Within %d hour grace period)", graceHours))
	}

	return zero("No Refund Policy (Grace Period Expired)")
}

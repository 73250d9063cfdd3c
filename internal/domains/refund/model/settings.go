package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"motoshop-backend/internal/domains/refund/policy"
)

// =====================================================
// REFUND POLICY SETTINGS (SINGLETON)
// =====================================================

// RefundPolicySettings is the live refund configuration. Exactly one row may
// exist; the repository rejects inserts when a row is already present.
// Payments capture a Snapshot of these fields at charge time, so editing the
// singleton never changes historical entitlements.
type RefundPolicySettings struct {
	ID uuid.UUID `db:"id" json:"id"`

	DepositEnabled bool `db:"deposit_enabled" json:"deposit_enabled"`

	FullPaymentFullRefundDays          int             `db:"full_payment_full_refund_days" json:"full_payment_full_refund_days"`
	FullPaymentPartialRefundDays       int             `db:"full_payment_partial_refund_days" json:"full_payment_partial_refund_days"`
	FullPaymentPartialRefundPercentage decimal.Decimal `db:"full_payment_partial_refund_percentage" json:"full_payment_partial_refund_percentage"`
	FullPaymentMinimalRefundDays       int             `db:"full_payment_minimal_refund_days" json:"full_payment_minimal_refund_days"`
	FullPaymentMinimalRefundPercentage decimal.Decimal `db:"full_payment_minimal_refund_percentage" json:"full_payment_minimal_refund_percentage"`

	DepositFullRefundDays          int             `db:"deposit_full_refund_days" json:"deposit_full_refund_days"`
	DepositPartialRefundDays       int             `db:"deposit_partial_refund_days" json:"deposit_partial_refund_days"`
	DepositPartialRefundPercentage decimal.Decimal `db:"deposit_partial_refund_percentage" json:"deposit_partial_refund_percentage"`
	DepositMinimalRefundDays       int             `db:"deposit_minimal_refund_days" json:"deposit_minimal_refund_days"`
	DepositMinimalRefundPercentage decimal.Decimal `db:"deposit_minimal_refund_percentage" json:"deposit_minimal_refund_percentage"`

	SalesEnableDepositRefund            bool `db:"sales_enable_deposit_refund" json:"sales_enable_deposit_refund"`
	SalesEnableDepositRefundGracePeriod bool `db:"sales_enable_deposit_refund_grace_period" json:"sales_enable_deposit_refund_grace_period"`
	SalesDepositRefundGracePeriodHours  int  `db:"sales_deposit_refund_grace_period_hours" json:"sales_deposit_refund_grace_period_hours"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func percentageRange(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return validation.NewError("validation_percentage", "must be between 0 and 100")
	}
	return nil
}

// Validate enforces the tier ordering invariant full >= partial >= minimal
// on both tracks, plus percentage ranges.
func (s *RefundPolicySettings) Validate() error {
	if err := validation.ValidateStruct(s,
		validation.Field(&s.FullPaymentFullRefundDays, validation.Min(0)),
		validation.Field(&s.FullPaymentPartialRefundDays, validation.Min(0)),
		validation.Field(&s.FullPaymentMinimalRefundDays, validation.Min(0)),
		validation.Field(&s.DepositFullRefundDays, validation.Min(0)),
		validation.Field(&s.DepositPartialRefundDays, validation.Min(0)),
		validation.Field(&s.DepositMinimalRefundDays, validation.Min(0)),
		validation.Field(&s.SalesDepositRefundGracePeriodHours, validation.Min(0)),
		validation.Field(&s.FullPaymentPartialRefundPercentage, validation.By(percentageRange)),
		validation.Field(&s.FullPaymentMinimalRefundPercentage, validation.By(percentageRange)),
		validation.Field(&s.DepositPartialRefundPercentage, validation.By(percentageRange)),
		validation.Field(&s.DepositMinimalRefundPercentage, validation.By(percentageRange)),
	); err != nil {
		return err
	}

	if s.FullPaymentFullRefundDays < s.FullPaymentPartialRefundDays ||
		s.FullPaymentPartialRefundDays < s.FullPaymentMinimalRefundDays {
		return NewSettingsInvalidError("full payment track: full refund days >= partial >= minimal required")
	}

	if s.DepositFullRefundDays < s.DepositPartialRefundDays ||
		s.DepositPartialRefundDays < s.DepositMinimalRefundDays {
		return NewSettingsInvalidError("deposit track: full refund days >= partial >= minimal required")
	}

	return nil
}

// Snapshot produces the point-in-time policy copy embedded into a Payment.
// Percentages are serialized as strings so they survive the JSONB round
// trip without floating-point drift.
func (s *RefundPolicySettings) Snapshot() policy.Snapshot {
	return policy.Snapshot{
		policy.KeyDepositEnabled: s.DepositEnabled,

		policy.TrackPrefixFullPayment + policy.SuffixFullRefundDays:          s.FullPaymentFullRefundDays,
		policy.TrackPrefixFullPayment + policy.SuffixPartialRefundDays:       s.FullPaymentPartialRefundDays,
		policy.TrackPrefixFullPayment + policy.SuffixPartialRefundPercentage: s.FullPaymentPartialRefundPercentage.StringFixed(2),
		policy.TrackPrefixFullPayment + policy.SuffixMinimalRefundDays:       s.FullPaymentMinimalRefundDays,
		policy.TrackPrefixFullPayment + policy.SuffixMinimalRefundPercentage: s.FullPaymentMinimalRefundPercentage.StringFixed(2),

		policy.TrackPrefixDeposit + policy.SuffixFullRefundDays:          s.DepositFullRefundDays,
		policy.TrackPrefixDeposit + policy.SuffixPartialRefundDays:       s.DepositPartialRefundDays,
		policy.TrackPrefixDeposit + policy.SuffixPartialRefundPercentage: s.DepositPartialRefundPercentage.StringFixed(2),
		policy.TrackPrefixDeposit + policy.SuffixMinimalRefundDays:       s.DepositMinimalRefundDays,
		policy.TrackPrefixDeposit + policy.SuffixMinimalRefundPercentage: s.DepositMinimalRefundPercentage.StringFixed(2),

		policy.KeySalesEnableDepositRefund: s.SalesEnableDepositRefund,
		policy.KeySalesEnableGracePeriod:   s.SalesEnableDepositRefundGracePeriod,
		policy.KeySalesGracePeriodHours:    s.SalesDepositRefundGracePeriodHours,
	}
}

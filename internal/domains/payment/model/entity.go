package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"motoshop-backend/internal/domains/refund/policy"
)

// =====================================================
// PAYMENT ENTITY
// =====================================================

// Payment is one charge attempt against a booking. Webhooks mutate status
// and refunded_amount; the policy snapshot is written once at charge time
// and never overwritten afterwards.
type Payment struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	StripePaymentIntentID *string    `db:"stripe_payment_intent_id" json:"stripe_payment_intent_id,omitempty"`
	BookingID             *uuid.UUID `db:"booking_id" json:"booking_id,omitempty"`
	BookingType           *string    `db:"booking_type" json:"booking_type,omitempty"`

	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Currency       string          `db:"currency" json:"currency"`
	Status         string          `db:"status" json:"status"`
	RefundedAmount decimal.Decimal `db:"refunded_amount" json:"refunded_amount"`

	RefundPolicySnapshot policy.Snapshot `db:"refund_policy_snapshot" json:"refund_policy_snapshot,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsRefundable reports whether a refund can be requested for this payment.
func (p *Payment) IsRefundable() bool {
	for _, s := range RefundableStatuses {
		if p.Status == s {
			return true
		}
	}
	return false
}

// IsFullyRefunded reports whether the whole charge has been returned.
func (p *Payment) IsFullyRefunded() bool {
	return p.RefundedAmount.GreaterThanOrEqual(p.Amount)
}

// HasBooking reports whether the payment carries a direct booking link.
func (p *Payment) HasBooking() bool {
	return p.BookingID != nil && p.BookingType != nil
}

// StatusForRefundedTotal maps a cumulative refunded total onto the payment
// status three-way threshold.
func (p *Payment) StatusForRefundedTotal(total decimal.Decimal) string {
	switch {
	case total.GreaterThanOrEqual(p.Amount):
		return StatusRefunded
	case total.IsPositive():
		return StatusPartiallyRefunded
	default:
		return StatusSucceeded
	}
}

// =====================================================
// WEBHOOK EVENT ENTITY
// =====================================================

// WebhookEvent is the append-only idempotency and audit record for one
// gateway delivery. The row itself is write-once; only the processing
// bookkeeping fields are updated.
type WebhookEvent struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	StripeEventID string     `db:"stripe_event_id" json:"stripe_event_id"`
	EventType     string     `db:"event_type" json:"event_type"`
	Payload       []byte     `db:"payload" json:"-"`
	Attempts      int        `db:"attempts" json:"attempts"`
	LastError     *string    `db:"last_error" json:"last_error,omitempty"`
	ReceivedAt    time.Time  `db:"received_at" json:"received_at"`
	ProcessedAt   *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// IsProcessed reports whether the event completed handling.
func (e *WebhookEvent) IsProcessed() bool {
	return e.ProcessedAt != nil
}

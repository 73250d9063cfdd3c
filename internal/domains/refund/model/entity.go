package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// REFUND REQUEST ENTITY
// =====================================================

// RefundRequest tracks a single refund workflow instance from submission to
// terminal outcome.
type RefundRequest struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	BookingID   uuid.UUID  `db:"booking_id" json:"booking_id"`
	BookingType string     `db:"booking_type" json:"booking_type"`
	PaymentID   *uuid.UUID `db:"payment_id" json:"payment_id,omitempty"`

	RequestEmail    string  `db:"request_email" json:"request_email"`
	Reason          string  `db:"reason" json:"reason"`
	RejectionReason *string `db:"rejection_reason" json:"rejection_reason,omitempty"`

	Status         string              `db:"status" json:"status"`
	AmountToRefund decimal.NullDecimal `db:"amount_to_refund" json:"amount_to_refund,omitempty"`

	ProcessedBy *uuid.UUID `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`

	// StaffNotes is an append-only log of system and admin actions.
	StaffNotes string `db:"staff_notes" json:"staff_notes"`

	StripeRefundID   *string `db:"stripe_refund_id" json:"stripe_refund_id,omitempty"`
	IsAdminInitiated bool    `db:"is_admin_initiated" json:"is_admin_initiated"`

	// RefundCalculationDetails is the policy engine output captured at
	// verification time, stored as JSONB for auditability.
	RefundCalculationDetails map[string]interface{} `db:"refund_calculation_details" json:"refund_calculation_details,omitempty"`

	VerificationToken *uuid.UUID `db:"verification_token" json:"-"`
	TokenCreatedAt    *time.Time `db:"token_created_at" json:"-"`

	RequestedAt time.Time `db:"requested_at" json:"requested_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the request can never change status again.
func (r *RefundRequest) IsTerminal() bool {
	return IsTerminalStatus(r.Status)
}

// IsActive reports whether the request still claims its payment for the
// purposes of the duplicate guard.
func (r *RefundRequest) IsActive() bool {
	for _, s := range ActiveStatuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// CanBeApproved reports whether an admin approval is legal from the current
// status.
func (r *RefundRequest) CanBeApproved() bool {
	for _, s := range ApprovableStatuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// CanBeRejected reports whether the request can still be rejected.
func (r *RefundRequest) CanBeRejected() bool {
	return CanTransition(r.Status, StatusRejected)
}

// IsTokenExpired reports whether the verification token is older than the
// TTL at asOf. A request with no token counts as expired.
func (r *RefundRequest) IsTokenExpired(asOf time.Time) bool {
	if r.TokenCreatedAt == nil {
		return true
	}
	return asOf.Sub(*r.TokenCreatedAt) > VerificationTokenTTLHours*time.Hour
}

// AppendStaffNote adds a timestamped line to the staff notes log.
func (r *RefundRequest) AppendStaffNote(note string, at time.Time) {
	line := fmt.Sprintf("[%s] %s", at.UTC().Format(time.RFC3339), note)
	if r.StaffNotes == "" {
		r.StaffNotes = line
		return
	}
	r.StaffNotes = r.StaffNotes + "\n" + line
}

// MarkProcessed stamps processed_by/processed_at the first time only.
// Subsequent saves must not overwrite who handled the request.
func (r *RefundRequest) MarkProcessed(adminID uuid.UUID, at time.Time) {
	if r.ProcessedBy == nil {
		r.ProcessedBy = &adminID
	}
	if r.ProcessedAt == nil {
		r.ProcessedAt = &at
	}
}

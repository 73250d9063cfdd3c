package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE REFUND REQUEST (user form)
// =====================================================

type CreateRefundRequest struct {
	BookingReference string `json:"booking_reference" binding:"required"`
	Email            string `json:"email" binding:"required"`
	Reason           string `json:"reason" binding:"required"`
}

// Validate validates CreateRefundRequest
func (req CreateRefundRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.BookingReference, validation.Required, validation.Length(5, 64)),
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Reason, validation.Required, validation.Length(5, 2000)),
	)
}

// =====================================================
// ADMIN CREATE REFUND REQUEST
// =====================================================

type AdminCreateRefundRequest struct {
	BookingReference string           `json:"booking_reference" binding:"required"`
	Reason           string           `json:"reason" binding:"required"`
	AmountToRefund   *decimal.Decimal `json:"amount_to_refund,omitempty"`
	StaffNotes       string           `json:"staff_notes,omitempty"`
}

// Validate validates AdminCreateRefundRequest
func (req AdminCreateRefundRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.BookingReference, validation.Required, validation.Length(5, 64)),
		validation.Field(&req.Reason, validation.Required, validation.Length(3, 2000)),
	)
}

// =====================================================
// ADMIN REVIEW REQUEST
// =====================================================

type ReviewRefundRequest struct {
	AmountToRefund *decimal.Decimal `json:"amount_to_refund,omitempty"`
	StaffNotes     string           `json:"staff_notes,omitempty"`
}

// =====================================================
// REJECT REQUEST
// =====================================================

type RejectRefundRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
	NotifyCustomer  bool   `json:"notify_customer"`
}

// Validate validates RejectRefundRequest
func (req RejectRefundRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.RejectionReason, validation.Required, validation.Length(3, 2000)),
	)
}

// =====================================================
// UPDATE SETTINGS REQUEST
// =====================================================

type UpdateRefundSettingsRequest struct {
	DepositEnabled bool `json:"deposit_enabled"`

	FullPaymentFullRefundDays          int             `json:"full_payment_full_refund_days"`
	FullPaymentPartialRefundDays       int             `json:"full_payment_partial_refund_days"`
	FullPaymentPartialRefundPercentage decimal.Decimal `json:"full_payment_partial_refund_percentage"`
	FullPaymentMinimalRefundDays       int             `json:"full_payment_minimal_refund_days"`
	FullPaymentMinimalRefundPercentage decimal.Decimal `json:"full_payment_minimal_refund_percentage"`

	DepositFullRefundDays          int             `json:"deposit_full_refund_days"`
	DepositPartialRefundDays       int             `json:"deposit_partial_refund_days"`
	DepositPartialRefundPercentage decimal.Decimal `json:"deposit_partial_refund_percentage"`
	DepositMinimalRefundDays       int             `json:"deposit_minimal_refund_days"`
	DepositMinimalRefundPercentage decimal.Decimal `json:"deposit_minimal_refund_percentage"`

	SalesEnableDepositRefund            bool `json:"sales_enable_deposit_refund"`
	SalesEnableDepositRefundGracePeriod bool `json:"sales_enable_deposit_refund_grace_period"`
	SalesDepositRefundGracePeriodHours  int  `json:"sales_deposit_refund_grace_period_hours"`
}

// Apply copies the request fields onto a settings row.
func (req UpdateRefundSettingsRequest) Apply(s *RefundPolicySettings) {
	s.DepositEnabled = req.DepositEnabled
	s.FullPaymentFullRefundDays = req.FullPaymentFullRefundDays
	s.FullPaymentPartialRefundDays = req.FullPaymentPartialRefundDays
	s.FullPaymentPartialRefundPercentage = req.FullPaymentPartialRefundPercentage
	s.FullPaymentMinimalRefundDays = req.FullPaymentMinimalRefundDays
	s.FullPaymentMinimalRefundPercentage = req.FullPaymentMinimalRefundPercentage
	s.DepositFullRefundDays = req.DepositFullRefundDays
	s.DepositPartialRefundDays = req.DepositPartialRefundDays
	s.DepositPartialRefundPercentage = req.DepositPartialRefundPercentage
	s.DepositMinimalRefundDays = req.DepositMinimalRefundDays
	s.DepositMinimalRefundPercentage = req.DepositMinimalRefundPercentage
	s.SalesEnableDepositRefund = req.SalesEnableDepositRefund
	s.SalesEnableDepositRefundGracePeriod = req.SalesEnableDepositRefundGracePeriod
	s.SalesDepositRefundGracePeriodHours = req.SalesDepositRefundGracePeriodHours
}

// =====================================================
// RESPONSES
// =====================================================

type RefundRequestResponse struct {
	ID               uuid.UUID              `json:"id"`
	BookingID        uuid.UUID              `json:"booking_id"`
	BookingType      string                 `json:"booking_type"`
	PaymentID        *uuid.UUID             `json:"payment_id,omitempty"`
	RequestEmail     string                 `json:"request_email"`
	Reason           string                 `json:"reason"`
	RejectionReason  *string                `json:"rejection_reason,omitempty"`
	Status           string                 `json:"status"`
	AmountToRefund   *decimal.Decimal       `json:"amount_to_refund,omitempty"`
	StaffNotes       string                 `json:"staff_notes,omitempty"`
	StripeRefundID   *string                `json:"stripe_refund_id,omitempty"`
	IsAdminInitiated bool                   `json:"is_admin_initiated"`
	Calculation      map[string]interface{} `json:"refund_calculation_details,omitempty"`
	ProcessedBy      *uuid.UUID             `json:"processed_by,omitempty"`
	ProcessedAt      *time.Time             `json:"processed_at,omitempty"`
	RequestedAt      time.Time              `json:"requested_at"`
	CreatedAt        time.Time              `json:"created_at"`
}

// ToResponse maps the entity to its API shape.
func (r *RefundRequest) ToResponse() *RefundRequestResponse {
	resp := &RefundRequestResponse{
		ID:               r.ID,
		BookingID:        r.BookingID,
		BookingType:      r.BookingType,
		PaymentID:        r.PaymentID,
		RequestEmail:     r.RequestEmail,
		Reason:           r.Reason,
		RejectionReason:  r.RejectionReason,
		Status:           r.Status,
		StaffNotes:       r.StaffNotes,
		StripeRefundID:   r.StripeRefundID,
		IsAdminInitiated: r.IsAdminInitiated,
		Calculation:      r.RefundCalculationDetails,
		ProcessedBy:      r.ProcessedBy,
		ProcessedAt:      r.ProcessedAt,
		RequestedAt:      r.RequestedAt,
		CreatedAt:        r.CreatedAt,
	}
	if r.AmountToRefund.Valid {
		amount := r.AmountToRefund.Decimal
		resp.AmountToRefund = &amount
	}
	return resp
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is a single hire, service, or sales booking. The three types share
// one table; type-specific schedule fields are nullable and only populated
// for the matching type.
type Booking struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Reference     string          `db:"reference" json:"reference"`
	Type          string          `db:"booking_type" json:"booking_type"`
	UserID        *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerEmail string          `db:"customer_email" json:"customer_email"`
	Status        string          `db:"status" json:"status"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	PaymentStatus string          `db:"payment_status" json:"payment_status"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	AmountPaid    decimal.Decimal `db:"amount_paid" json:"amount_paid"`

	// Hire schedule.
	PickupAt *time.Time `db:"pickup_at" json:"pickup_at,omitempty"`
	ReturnAt *time.Time `db:"return_at" json:"return_at,omitempty"`

	// Service schedule.
	DropoffAt         *time.Time `db:"dropoff_at" json:"dropoff_at,omitempty"`
	EstimatedPickupAt *time.Time `db:"estimated_pickup_at" json:"estimated_pickup_at,omitempty"`

	// Sales schedule.
	AppointmentAt *time.Time `db:"appointment_at" json:"appointment_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RefundAnchor returns the datetime refund day-tiers are measured against:
// pickup for hire bookings, drop-off for service bookings. Sales bookings
// use the grace-period variant keyed off CreatedAt, so they have no anchor.
func (b *Booking) RefundAnchor() *time.Time {
	switch b.Type {
	case BookingTypeHire:
		return b.PickupAt
	case BookingTypeService:
		return b.DropoffAt
	default:
		return nil
	}
}

// IsDepositTrack reports whether refund calculations should use the deposit
// thresholds rather than the full-payment thresholds.
func (b *Booking) IsDepositTrack() bool {
	return b.PaymentMethod == PaymentMethodOnlineDeposit || b.PaymentStatus == PaymentStatusDepositPaid
}

// IsGatewayPaid reports whether the booking was paid through the payment
// gateway. Manual in-store payments are never auto-refunded.
func (b *Booking) IsGatewayPaid() bool {
	for _, m := range GatewayPaymentMethods {
		if b.PaymentMethod == m {
			return true
		}
	}
	return false
}

// DisplayPaymentMethod returns the customer-facing label for the booking's
// payment method, falling back to the raw code.
func (b *Booking) DisplayPaymentMethod() string {
	if name, ok := PaymentMethodDisplayNames[b.PaymentMethod]; ok {
		return name
	}
	return b.PaymentMethod
}

// IsValidBookingType reports whether t is a known booking type.
func IsValidBookingType(t string) bool {
	for _, v := range ValidBookingTypes {
		if t == v {
			return true
		}
	}
	return false
}

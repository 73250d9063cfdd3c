package gateway

import (
	"context"

	"github.com/shopspring/decimal"
	stripelib "github.com/stripe/stripe-go/v76"
)

// =====================================================
// GATEWAY INTERFACES
// =====================================================

// StripeGateway is the outbound surface to Stripe used by admin approvals.
type StripeGateway interface {
	// InitiateRefund creates a refund against a payment intent. The amount
	// is a decimal in major units; conversion to cents happens inside.
	InitiateRefund(ctx context.Context, req RefundRequest) (*RefundResponse, error)
}

// WebhookVerifier validates inbound webhook deliveries. Split from the
// gateway so the webhook service can be tested without Stripe keys.
type WebhookVerifier interface {
	// ConstructEvent verifies the Stripe-Signature header against the
	// payload and returns the parsed event.
	ConstructEvent(payload []byte, sigHeader string) (stripelib.Event, error)
}

// =====================================================
// REQUEST/RESPONSE TYPES
// =====================================================

// RefundRequest carries everything Stripe needs to start a refund. Metadata
// values land on the refund object and come back on webhook events.
type RefundRequest struct {
	PaymentIntentID string
	Amount          decimal.Decimal
	Currency        string
	Metadata        map[string]string
}

// RefundResponse is the immediate (pre-webhook) result of a refund call.
type RefundResponse struct {
	RefundID string
	Status   string
}

package stripe

import (
	"context"

	stripelib "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/webhook"

	"motoshop-backend/internal/domains/payment/gateway"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// STRIPE GATEWAY CLIENT
// =====================================================

type Client struct {
	webhookSecret string
}

// NewClient configures the stripe-go library with the account secret and
// returns a client that implements both gateway interfaces.
func NewClient(secretKey, webhookSecret string) *Client {
	stripelib.Key = secretKey
	return &Client{webhookSecret: webhookSecret}
}

// InitiateRefund creates a refund against the payment intent. Stripe wants
// the amount in the currency's smallest unit.
func (c *Client) InitiateRefund(ctx context.Context, req gateway.RefundRequest) (*gateway.RefundResponse, error) {
	cents := req.Amount.Shift(2).Round(0).IntPart()

	params := &stripelib.RefundParams{
		PaymentIntent: stripelib.String(req.PaymentIntentID),
		Amount:        stripelib.Int64(cents),
		Reason:        stripelib.String(string(stripelib.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	result, err := refund.New(params)
	if err != nil {
		logger.Error().
			Err(err).
			Str("payment_intent", req.PaymentIntentID).
			Str("amount", req.Amount.StringFixed(2)).
			Msg("Stripe refund call failed")
		return nil, err
	}

	logger.Info().
		Str("refund_id", result.ID).
		Str("payment_intent", req.PaymentIntentID).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("Stripe refund initiated")

	return &gateway.RefundResponse{
		RefundID: result.ID,
		Status:   string(result.Status),
	}, nil
}

// ConstructEvent verifies the signature header and parses the event.
func (c *Client) ConstructEvent(payload []byte, sigHeader string) (stripelib.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
}

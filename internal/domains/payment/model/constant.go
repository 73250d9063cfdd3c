package model

// =====================================================
// PAYMENT STATUSES
// =====================================================

const (
	StatusCreated           = "created"
	StatusProcessing        = "processing"
	StatusSucceeded         = "succeeded"
	StatusFailed            = "failed"
	StatusRefunded          = "refunded"
	StatusPartiallyRefunded = "partially_refunded"
)

var ValidStatuses = []string{
	StatusCreated,
	StatusProcessing,
	StatusSucceeded,
	StatusFailed,
	StatusRefunded,
	StatusPartiallyRefunded,
}

// RefundableStatuses are the payment states a refund may be requested from.
var RefundableStatuses = []string{
	StatusSucceeded,
	StatusPartiallyRefunded,
}

// =====================================================
// STRIPE WEBHOOK EVENT TYPES
// =====================================================

const (
	EventChargeRefunded       = "charge.refunded"
	EventRefundUpdated        = "refund.updated"
	EventPaymentIntentSuccess = "payment_intent.succeeded"
	EventPaymentIntentFailed  = "payment_intent.payment_failed"
)

// =====================================================
// CONFIG CONSTANTS
// =====================================================

const (
	DefaultCurrency = "aud"

	// WebhookRetryMaxAttempts bounds how often the periodic retry job will
	// re-run a failed webhook event before giving up.
	WebhookRetryMaxAttempts = 5
)

// =====================================================
// ERROR CODES
// =====================================================

const (
	ErrCodePaymentNotFound         = "PAY001"
	ErrCodeInvalidSignature        = "PAY002"
	ErrCodeWebhookAlreadyProcessed = "PAY003"
	ErrCodeWebhookEventNotFound    = "PAY004"
	ErrCodeInvalidPayload          = "PAY005"
	ErrCodePaymentNotRefundable    = "PAY006"
	ErrCodeLedgerUpdateFailed      = "PAY007"
	ErrCodeSnapshotImmutable       = "PAY008"
)

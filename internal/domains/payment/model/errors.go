package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrInvalidSignature        = errors.New("invalid webhook signature")
	ErrWebhookAlreadyProcessed = errors.New("webhook already processed")
	ErrWebhookEventNotFound    = errors.New("webhook event not found")
	ErrInvalidPayload          = errors.New("invalid webhook payload")
	ErrPaymentNotRefundable    = errors.New("payment is not refundable")
	ErrSnapshotImmutable       = errors.New("policy snapshot already set")
)

// =====================================================
// CUSTOM PAYMENT ERROR
// =====================================================

type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewPaymentNotFoundError(ref string) *PaymentError {
	return NewPaymentError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment not found: %s", ref),
		ErrPaymentNotFound,
	)
}

func NewInvalidSignatureError(err error) *PaymentError {
	return NewPaymentError(
		ErrCodeInvalidSignature,
		"Webhook signature verification failed",
		fmt.Errorf("%w: %v", ErrInvalidSignature, err),
	)
}

func NewWebhookAlreadyProcessedError(eventID string) *PaymentError {
	return NewPaymentError(
		ErrCodeWebhookAlreadyProcessed,
		fmt.Sprintf("Webhook event %s already recorded (idempotent)", eventID),
		ErrWebhookAlreadyProcessed,
	)
}

func NewInvalidPayloadError(err error) *PaymentError {
	return NewPaymentError(
		ErrCodeInvalidPayload,
		"Webhook payload could not be parsed",
		fmt.Errorf("%w: %v", ErrInvalidPayload, err),
	)
}

func NewPaymentNotRefundableError(status string) *PaymentError {
	return NewPaymentError(
		ErrCodePaymentNotRefundable,
		fmt.Sprintf("Payment in status '%s' cannot be refunded", status),
		ErrPaymentNotRefundable,
	)
}

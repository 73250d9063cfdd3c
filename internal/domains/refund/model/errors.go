package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrRefundRequestNotFound  = errors.New("refund request not found")
	ErrDuplicateActiveRequest = errors.New("active refund request already exists")
	ErrInvalidTransition      = errors.New("illegal refund status transition")
	ErrTokenExpired           = errors.New("verification token expired")
	ErrAlreadyVerified        = errors.New("refund request already verified")
	ErrInvalidRefundAmount    = errors.New("invalid refund amount")
	ErrMissingPayment         = errors.New("refund request has no payment")
	ErrMissingGatewayIntent   = errors.New("payment has no gateway intent reference")
	ErrEmailMismatch          = errors.New("email does not match booking")
	ErrGatewayRefundFailed    = errors.New("gateway refund call failed")
	ErrSettingsNotFound       = errors.New("refund policy settings not found")
	ErrSettingsSingleton      = errors.New("refund policy settings row already exists")
	ErrAmountExceedsPayment   = errors.New("refund amount exceeds payment amount")
)

// =====================================================
// CUSTOM REFUND ERROR
// =====================================================

type RefundError struct {
	Code    string
	Message string
	Err     error
}

func (e *RefundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RefundError) Unwrap() error {
	return e.Err
}

func NewRefundError(code, message string, err error) *RefundError {
	return &RefundError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewRefundRequestNotFoundError(id string) *RefundError {
	return NewRefundError(
		ErrCodeRefundRequestNotFound,
		fmt.Sprintf("Refund request not found: %s", id),
		ErrRefundRequestNotFound,
	)
}

func NewDuplicateActiveRequestError() *RefundError {
	return NewRefundError(
		ErrCodeDuplicateActiveRequest,
		"A refund request for this booking is already in progress.",
		ErrDuplicateActiveRequest,
	)
}

func NewInvalidTransitionError(from, to string) *RefundError {
	return NewRefundError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Cannot transition refund request from '%s' to '%s'", from, to),
		ErrInvalidTransition,
	)
}

func NewTokenExpiredError() *RefundError {
	return NewRefundError(
		ErrCodeTokenExpired,
		"Refund request not found or expired",
		ErrTokenExpired,
	)
}

func NewAlreadyVerifiedError(status string) *RefundError {
	return NewRefundError(
		ErrCodeAlreadyVerified,
		fmt.Sprintf("Refund request has already been processed (status: %s)", status),
		ErrAlreadyVerified,
	)
}

func NewEmailMismatchError() *RefundError {
	return NewRefundError(
		ErrCodeEmailMismatch,
		"Email address does not match the booking",
		ErrEmailMismatch,
	)
}

func NewMissingPaymentError() *RefundError {
	return NewRefundError(
		ErrCodeMissingPayment,
		"No completed online payment found for this booking",
		ErrMissingPayment,
	)
}

func NewMissingGatewayIntentError() *RefundError {
	return NewRefundError(
		ErrCodeMissingGatewayIntent,
		"Payment has no gateway reference to refund against",
		ErrMissingGatewayIntent,
	)
}

func NewSettingsNotFoundError() *RefundError {
	return NewRefundError(
		ErrCodeSettingsNotFound,
		"Refund policy settings have not been configured",
		ErrSettingsNotFound,
	)
}

func NewInvalidRefundAmountError(reason string) *RefundError {
	return NewRefundError(
		ErrCodeInvalidRefundAmount,
		fmt.Sprintf("Invalid refund amount: %s", reason),
		ErrInvalidRefundAmount,
	)
}

func NewGatewayRefundFailedError(err error) *RefundError {
	return NewRefundError(
		ErrCodeGatewayRefundFailed,
		"Failed to initiate refund with payment gateway",
		fmt.Errorf("%w: %v", ErrGatewayRefundFailed, err),
	)
}

func NewSettingsInvalidError(reason string) *RefundError {
	return NewRefundError(
		ErrCodeSettingsInvalid,
		fmt.Sprintf("Invalid refund policy settings: %s", reason),
		nil,
	)
}

func NewSettingsSingletonError() *RefundError {
	return NewRefundError(
		ErrCodeSettingsSingleton,
		"Refund policy settings already exist; update the existing row instead",
		ErrSettingsSingleton,
	)
}

func NewAmountExceedsPaymentError() *RefundError {
	return NewRefundError(
		ErrCodeAmountExceedsPayment,
		"Refund amount cannot exceed the payment amount",
		ErrAmountExceedsPayment,
	)
}

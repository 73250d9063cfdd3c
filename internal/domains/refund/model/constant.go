package model

// =====================================================
// REFUND REQUEST STATUSES
// =====================================================

const (
	StatusUnverified              = "unverified"
	StatusPending                 = "pending"
	StatusReviewedPendingApproval = "reviewed_pending_approval"
	StatusApproved                = "approved"
	StatusRejected                = "rejected"
	StatusPartiallyRefunded       = "partially_refunded"
	StatusRefunded                = "refunded"
	StatusFailed                  = "failed"
)

var ValidStatuses = []string{
	StatusUnverified,
	StatusPending,
	StatusReviewedPendingApproval,
	StatusApproved,
	StatusRejected,
	StatusPartiallyRefunded,
	StatusRefunded,
	StatusFailed,
}

// ActiveStatuses are the states in which a request still claims its payment.
// The duplicate guard and the webhook find-or-create both search these.
var ActiveStatuses = []string{
	StatusUnverified,
	StatusPending,
	StatusApproved,
	StatusReviewedPendingApproval,
	StatusPartiallyRefunded,
}

// ApprovableStatuses are the states an admin may approve from. Approved and
// failed are included so a retried gateway call after a transient or
// recorded failure is legal; the preserved amount and refund id are reused.
var ApprovableStatuses = []string{
	StatusPending,
	StatusReviewedPendingApproval,
	StatusUnverified,
	StatusApproved,
	StatusFailed,
}

// statusTransitions is the closed transition table for the refund workflow.
// Anything not listed here is an illegal transition and must be rejected,
// not silently accepted.
var statusTransitions = map[string][]string{
	StatusUnverified: {
		StatusPending,
		StatusApproved,
		StatusRejected,
	},
	StatusPending: {
		StatusReviewedPendingApproval,
		StatusApproved,
		StatusRejected,
	},
	StatusReviewedPendingApproval: {
		StatusApproved,
		StatusRejected,
	},
	StatusApproved: {
		StatusApproved,
		StatusRefunded,
		StatusPartiallyRefunded,
		StatusFailed,
		StatusRejected,
	},
	StatusPartiallyRefunded: {
		StatusRefunded,
		StatusPartiallyRefunded,
		StatusFailed,
		StatusRejected,
	},
	StatusFailed: {
		StatusApproved,
		StatusReviewedPendingApproval,
		StatusRefunded,
		StatusPartiallyRefunded,
		StatusRejected,
	},
	StatusRejected: {},
	StatusRefunded: {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a status has no outgoing transitions.
func IsTerminalStatus(status string) bool {
	allowed, ok := statusTransitions[status]
	return ok && len(allowed) == 0
}

// IsValidStatus reports whether s is a known refund request status.
func IsValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// =====================================================
// NOTIFICATION TEMPLATE KEYS
// =====================================================

const (
	TemplateRefundVerification   = "refund_verification"
	TemplateRefundAdminAlert     = "refund_admin_alert"
	TemplateRefundApproved       = "refund_approved"
	TemplateRefundRejected       = "refund_rejected"
	TemplateRefundProcessed      = "refund_processed"
	TemplateRefundRequestExpired = "refund_request_expired"
)

// =====================================================
// CONFIG CONSTANTS
// =====================================================

const (
	// VerificationTokenTTLHours is how long an emailed verification link
	// stays valid, and also how long an unverified request survives before
	// the expiry sweep removes it.
	VerificationTokenTTLHours = 24
)

// =====================================================
// ERROR CODES
// =====================================================

const (
	ErrCodeRefundRequestNotFound  = "RFD001"
	ErrCodeDuplicateActiveRequest = "RFD002"
	ErrCodeInvalidTransition      = "RFD003"
	ErrCodeTokenExpired           = "RFD004"
	ErrCodeAlreadyVerified        = "RFD005"
	ErrCodeInvalidRefundAmount    = "RFD006"
	ErrCodeMissingPayment         = "RFD007"
	ErrCodeMissingGatewayIntent   = "RFD008"
	ErrCodeEmailMismatch          = "RFD009"
	ErrCodeGatewayRefundFailed    = "RFD010"
	ErrCodeRejectionReasonMissing = "RFD011"
	ErrCodeSettingsNotFound       = "RFD012"
	ErrCodeSettingsInvalid        = "RFD013"
	ErrCodeSettingsSingleton      = "RFD014"
	ErrCodeAmountExceedsPayment   = "RFD015"
)

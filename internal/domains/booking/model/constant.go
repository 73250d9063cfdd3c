package model

// =====================================================
// BOOKING TYPES
// =====================================================

const (
	BookingTypeHire    = "hire"
	BookingTypeService = "service"
	BookingTypeSales   = "sales"
)

var ValidBookingTypes = []string{
	BookingTypeHire,
	BookingTypeService,
	BookingTypeSales,
}

// Reference prefixes used in customer-facing booking references.
const (
	ReferencePrefixHire    = "HIRE-"
	ReferencePrefixService = "SVC-"
	ReferencePrefixSales   = "SBK-"
)

// =====================================================
// BOOKING STATUSES
// =====================================================

const (
	StatusPending             = "pending"
	StatusPendingConfirmation = "pending_confirmation"
	StatusConfirmed           = "confirmed"
	StatusInProgress          = "in_progress"
	StatusCompleted           = "completed"
	StatusCancelled           = "cancelled"
	StatusDeclined            = "declined"
	StatusDeclinedRefunded    = "declined_refunded"
	StatusNoShow              = "no_show"
	StatusEnquired            = "enquired"
)

var ValidHireStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusDeclined,
	StatusNoShow,
}

var ValidServiceStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusDeclined,
	StatusDeclinedRefunded,
	StatusNoShow,
}

var ValidSalesStatuses = []string{
	StatusPendingConfirmation,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
	StatusDeclined,
	StatusDeclinedRefunded,
	StatusNoShow,
	StatusEnquired,
}

// =====================================================
// PAYMENT METHODS
// =====================================================

const (
	PaymentMethodOnlineFull    = "online_full"
	PaymentMethodOnlineDeposit = "online_deposit"
	PaymentMethodInStoreFull   = "in_store_full"
)

var ValidPaymentMethods = []string{
	PaymentMethodOnlineFull,
	PaymentMethodOnlineDeposit,
	PaymentMethodInStoreFull,
}

// GatewayPaymentMethods are the methods settled through the payment gateway
// and therefore eligible for automatic refunds.
var GatewayPaymentMethods = []string{
	PaymentMethodOnlineFull,
	PaymentMethodOnlineDeposit,
}

// PaymentMethodDisplayNames maps method codes to customer-facing labels.
var PaymentMethodDisplayNames = map[string]string{
	PaymentMethodOnlineFull:    "Online Full Payment",
	PaymentMethodOnlineDeposit: "Online Deposit",
	PaymentMethodInStoreFull:   "In-Store Full Payment",
}

// =====================================================
// BOOKING PAYMENT STATUSES
// =====================================================

const (
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusDepositPaid       = "deposit_paid"
	PaymentStatusPaid              = "paid"
	PaymentStatusPartiallyRefunded = "partially_refunded"
	PaymentStatusRefunded          = "refunded"
)

var ValidPaymentStatuses = []string{
	PaymentStatusUnpaid,
	PaymentStatusDepositPaid,
	PaymentStatusPaid,
	PaymentStatusPartiallyRefunded,
	PaymentStatusRefunded,
}

// =====================================================
// ERROR CODES
// =====================================================

const (
	ErrCodeBookingNotFound    = "BKG001"
	ErrCodeInvalidBookingType = "BKG002"
	ErrCodeInvalidReference   = "BKG003"
	ErrCodeUpdateFailed       = "BKG004"
)

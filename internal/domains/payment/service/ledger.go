package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	bookingmodel "motoshop-backend/internal/domains/booking/model"
	bookingrepo "motoshop-backend/internal/domains/booking/repository"
	"motoshop-backend/internal/domains/payment/model"
	"motoshop-backend/internal/domains/payment/repository"
)

// =====================================================
// LEDGER UPDATER
// =====================================================

// LedgerUpdate is the reconciled state for a payment and its booking after
// a confirmed refund total. Computed as a value first so the decision logic
// stays a pure function over its inputs.
type LedgerUpdate struct {
	RefundedAmount decimal.Decimal
	PaymentStatus  string

	BookingAmountPaid    decimal.Decimal
	BookingPaymentStatus string
	BookingStatus        string
}

// FullyRefunded reports whether the update represents a complete refund.
func (u LedgerUpdate) FullyRefunded() bool {
	return u.PaymentStatus == model.StatusRefunded
}

// ComputeLedgerUpdate derives the consistent ledger state for an absolute
// refunded total. totalRefunded is cumulative, not a delta, which is what
// makes webhook replays idempotent.
//
// Booking-status rules are booking-type-specific:
//  1. hire: a full refund cancels the booking; partial leaves it alone.
//  2. service: status unchanged, except declined + full refund moves to
//     declined_refunded.
//  3. sales: a full refund moves to declined_refunded from any status.
//
// booking may be nil (payment with no direct link); only the payment side
// is computed then.
func ComputeLedgerUpdate(payment *model.Payment, booking *bookingmodel.Booking, totalRefunded decimal.Decimal) LedgerUpdate {
	if totalRefunded.IsNegative() {
		totalRefunded = decimal.Zero
	}

	update := LedgerUpdate{
		RefundedAmount: totalRefunded,
		PaymentStatus:  payment.StatusForRefundedTotal(totalRefunded),
	}

	if booking == nil {
		return update
	}

	newPaid := payment.Amount.Sub(totalRefunded)
	if newPaid.IsNegative() {
		newPaid = decimal.Zero
	}
	update.BookingAmountPaid = newPaid

	switch update.PaymentStatus {
	case model.StatusRefunded:
		update.BookingPaymentStatus = bookingmodel.PaymentStatusRefunded
	case model.StatusPartiallyRefunded:
		update.BookingPaymentStatus = bookingmodel.PaymentStatusPartiallyRefunded
	default:
		update.BookingPaymentStatus = booking.PaymentStatus
	}

	update.BookingStatus = booking.Status
	fullRefund := update.PaymentStatus == model.StatusRefunded

	switch booking.Type {
	case bookingmodel.BookingTypeHire:
		if fullRefund {
			update.BookingStatus = bookingmodel.StatusCancelled
		}
	case bookingmodel.BookingTypeService:
		if fullRefund && booking.Status == bookingmodel.StatusDeclined {
			update.BookingStatus = bookingmodel.StatusDeclinedRefunded
		}
	case bookingmodel.BookingTypeSales:
		if fullRefund {
			update.BookingStatus = bookingmodel.StatusDeclinedRefunded
		}
	}

	return update
}

// ledgerUpdater applies LedgerUpdates inside an existing transaction. The
// caller holds the payment row lock for the duration.
type ledgerUpdater struct {
	paymentRepo repository.PaymentRepoInterface
	bookingRepo bookingrepo.BookingRepository
}

func newLedgerUpdater(
	paymentRepo repository.PaymentRepoInterface,
	bookingRepo bookingrepo.BookingRepository,
) *ledgerUpdater {
	return &ledgerUpdater{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
	}
}

// Apply computes and persists the ledger update for payment. The booking is
// looked up and locked through the payment's own link; a payment with no
// booking only updates the payment side.
func (l *ledgerUpdater) Apply(ctx context.Context, tx pgx.Tx, payment *model.Payment, totalRefunded decimal.Decimal) (LedgerUpdate, error) {
	var booking *bookingmodel.Booking
	if payment.HasBooking() {
		var err error
		booking, err = l.bookingRepo.GetByIDForUpdateWithTx(ctx, tx, *payment.BookingID)
		if err != nil {
			return LedgerUpdate{}, fmt.Errorf("lock booking %s: %w", payment.BookingID, err)
		}
	}

	update := ComputeLedgerUpdate(payment, booking, totalRefunded)

	if err := l.paymentRepo.UpdateLedgerWithTx(ctx, tx, payment.ID, update.RefundedAmount, update.PaymentStatus); err != nil {
		return LedgerUpdate{}, err
	}

	if booking != nil {
		err := l.bookingRepo.UpdateLedgerWithTx(ctx, tx, booking.ID,
			update.BookingAmountPaid, update.BookingPaymentStatus, update.BookingStatus)
		if err != nil {
			return LedgerUpdate{}, err
		}
	}

	payment.RefundedAmount = update.RefundedAmount
	payment.Status = update.PaymentStatus

	return update, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	stripelib "github.com/stripe/stripe-go/v76"

	bookingmodel "motoshop-backend/internal/domains/booking/model"
	bookingrepo "motoshop-backend/internal/domains/booking/repository"
	notifservice "motoshop-backend/internal/domains/notification/service"
	"motoshop-backend/internal/domains/payment/gateway"
	"motoshop-backend/internal/domains/payment/model"
	"motoshop-backend/internal/domains/payment/repository"
	refundmodel "motoshop-backend/internal/domains/refund/model"
	refundrepo "motoshop-backend/internal/domains/refund/repository"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// WEBHOOK RECONCILIATION SERVICE
// =====================================================

type eventHandler func(ctx context.Context, event stripelib.Event) error

type webhookService struct {
	verifier      gateway.WebhookVerifier
	txManager     repository.TransactionManager
	paymentRepo   repository.PaymentRepoInterface
	webhookRepo   repository.WebhookRepoInterface
	bookingRepo   bookingrepo.BookingRepository
	refundRepo    refundrepo.RefundRepoInterface
	settingsRepo  refundrepo.SettingsRepoInterface
	notifications notifservice.NotificationService
	ledger        *ledgerUpdater

	// Compile-time dispatch table. Event types without an entry are
	// recorded and acknowledged, never retried.
	handlers map[string]eventHandler
}

func NewWebhookService(
	verifier gateway.WebhookVerifier,
	txManager repository.TransactionManager,
	paymentRepo repository.PaymentRepoInterface,
	webhookRepo repository.WebhookRepoInterface,
	bookingRepo bookingrepo.BookingRepository,
	refundRepo refundrepo.RefundRepoInterface,
	settingsRepo refundrepo.SettingsRepoInterface,
	notifications notifservice.NotificationService,
) WebhookService {
	s := &webhookService{
		verifier:      verifier,
		txManager:     txManager,
		paymentRepo:   paymentRepo,
		webhookRepo:   webhookRepo,
		bookingRepo:   bookingRepo,
		refundRepo:    refundRepo,
		settingsRepo:  settingsRepo,
		notifications: notifications,
		ledger:        newLedgerUpdater(paymentRepo, bookingRepo),
	}
	s.handlers = map[string]eventHandler{
		model.EventChargeRefunded:       s.handleChargeRefunded,
		model.EventRefundUpdated:        s.handleRefundUpdated,
		model.EventPaymentIntentSuccess: s.handlePaymentIntentSucceeded,
		model.EventPaymentIntentFailed:  s.handlePaymentIntentFailed,
	}
	return s
}

// ProcessWebhook is the single entry point for POST /webhooks/stripe.
//
// Ordering matters: the signature check happens before anything is written,
// and the audit row is committed before the handler runs so a handler
// failure never loses the delivery.
func (s *webhookService) ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.verifier.ConstructEvent(payload, sigHeader)
	if err != nil {
		logger.Warn().Err(err).Msg("webhook signature verification failed")
		return model.NewInvalidSignatureError(err)
	}

	record := &model.WebhookEvent{
		ID:            uuid.New(),
		StripeEventID: event.ID,
		EventType:     string(event.Type),
		Payload:       payload,
		ReceivedAt:    time.Now(),
	}
	if err := s.webhookRepo.Create(ctx, record); err != nil {
		if errors.Is(err, model.ErrWebhookAlreadyProcessed) {
			logger.Info().Str("event_id", event.ID).Msg("webhook event already recorded, skipping")
			return nil
		}
		return err
	}

	s.dispatch(ctx, record, event)
	return nil
}

// RetryFailedEvents re-drives events whose handler failed on a previous
// delivery. One bad event must not starve the rest of the batch.
func (s *webhookService) RetryFailedEvents(ctx context.Context, limit int) error {
	events, err := s.webhookRepo.GetFailedEvents(ctx, limit, model.WebhookRetryMaxAttempts)
	if err != nil {
		return err
	}

	for _, record := range events {
		var event stripelib.Event
		if err := json.Unmarshal(record.Payload, &event); err != nil {
			s.markFailed(ctx, record.ID, fmt.Errorf("unmarshal stored payload: %w", err))
			continue
		}
		s.dispatch(ctx, record, event)
	}
	return nil
}

func (s *webhookService) dispatch(ctx context.Context, record *model.WebhookEvent, event stripelib.Event) {
	handler, ok := s.handlers[string(event.Type)]
	if !ok {
		logger.Info().
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("unhandled webhook event type, acknowledged")
		s.markProcessed(ctx, record.ID)
		return
	}

	if err := handler(ctx, event); err != nil {
		logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("webhook handler failed")
		s.markFailed(ctx, record.ID, err)
		return
	}

	s.markProcessed(ctx, record.ID)
}

func (s *webhookService) markProcessed(ctx context.Context, id uuid.UUID) {
	if err := s.webhookRepo.MarkAsProcessed(ctx, id); err != nil {
		logger.Error().Err(err).Str("webhook_event_id", id.String()).Msg("failed to mark webhook event processed")
	}
}

func (s *webhookService) markFailed(ctx context.Context, id uuid.UUID, cause error) {
	if err := s.webhookRepo.MarkProcessingError(ctx, id, cause.Error()); err != nil {
		logger.Error().Err(err).Str("webhook_event_id", id.String()).Msg("failed to record webhook processing error")
	}
}

// =====================================================
// EVENT HANDLERS
// =====================================================

// handleChargeRefunded reconciles the ledger from the charge's cumulative
// amount_refunded. Absolute-amount semantics make redeliveries idempotent.
func (s *webhookService) handleChargeRefunded(ctx context.Context, event stripelib.Event) error {
	var charge stripelib.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return model.NewInvalidPayloadError(err)
	}
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		return model.NewInvalidPayloadError(errors.New("charge has no payment intent"))
	}

	totalRefunded := decimal.NewFromInt(charge.AmountRefunded).Shift(-2)
	if !totalRefunded.IsPositive() {
		logger.Info().Str("event_id", event.ID).Msg("charge.refunded with non-positive amount, skipping")
		return nil
	}

	var refundID string
	if charge.Refunds != nil && len(charge.Refunds.Data) > 0 {
		refundID = charge.Refunds.Data[0].ID
	}

	return s.applyRefund(ctx, charge.PaymentIntent.ID, totalRefunded, refundID)
}

// handleRefundUpdated tracks the refund object itself. A failed refund
// moves the request to failed so staff can retry; a succeeded refund only
// attaches the refund id, the ledger movement arrives on charge.refunded.
func (s *webhookService) handleRefundUpdated(ctx context.Context, event stripelib.Event) error {
	var stripeRefund stripelib.Refund
	if err := json.Unmarshal(event.Data.Raw, &stripeRefund); err != nil {
		return model.NewInvalidPayloadError(err)
	}
	if stripeRefund.PaymentIntent == nil || stripeRefund.PaymentIntent.ID == "" {
		return model.NewInvalidPayloadError(errors.New("refund has no payment intent"))
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer s.txManager.RollbackTx(ctx, tx)

	payment, err := s.paymentRepo.GetByIntentIDForUpdate(ctx, tx, stripeRefund.PaymentIntent.ID)
	if err != nil {
		return err
	}

	request, err := s.refundRepo.GetActiveByPaymentIDWithTx(ctx, tx, payment.ID)
	if err != nil {
		if errors.Is(err, refundmodel.ErrRefundRequestNotFound) {
			logger.Info().
				Str("stripe_refund_id", stripeRefund.ID).
				Msg("refund.updated with no active refund request, ignoring")
			return nil
		}
		return err
	}

	now := time.Now()
	switch stripeRefund.Status {
	case stripelib.RefundStatusFailed:
		request.Status = refundmodel.StatusFailed
		request.AppendStaffNote(fmt.Sprintf("Stripe refund %s failed: %s", stripeRefund.ID, stripeRefund.FailureReason), now)
	case stripelib.RefundStatusSucceeded:
		refundID := stripeRefund.ID
		request.StripeRefundID = &refundID
	default:
		return nil
	}

	if err := s.refundRepo.UpdateWithTx(ctx, tx, request); err != nil {
		return err
	}
	return s.txManager.CommitTx(ctx, tx)
}

// handlePaymentIntentSucceeded marks (or records) the payment and captures
// the policy snapshot exactly once, from the live settings singleton.
func (s *webhookService) handlePaymentIntentSucceeded(ctx context.Context, event stripelib.Event) error {
	var intent stripelib.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return model.NewInvalidPayloadError(err)
	}
	if intent.ID == "" {
		return model.NewInvalidPayloadError(errors.New("payment intent has no id"))
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer s.txManager.RollbackTx(ctx, tx)

	payment, err := s.paymentRepo.GetByIntentIDForUpdate(ctx, tx, intent.ID)
	if err != nil {
		if !errors.Is(err, model.ErrPaymentNotFound) {
			return err
		}
		payment, err = s.createPaymentFromIntent(ctx, tx, &intent)
		if err != nil {
			return err
		}
	} else if payment.Status != model.StatusSucceeded {
		if err := s.paymentRepo.UpdateStatusWithTx(ctx, tx, payment.ID, model.StatusSucceeded); err != nil {
			return err
		}
	}

	if payment.RefundPolicySnapshot.IsEmpty() {
		settings, err := s.settingsRepo.Get(ctx)
		if err != nil {
			if !errors.Is(err, refundmodel.ErrSettingsNotFound) {
				return err
			}
			logger.Warn().
				Str("payment_intent_id", intent.ID).
				Msg("no refund policy settings configured, payment stored without snapshot")
		} else {
			if err := s.paymentRepo.SetPolicySnapshotIfEmptyWithTx(ctx, tx, payment.ID, settings.Snapshot()); err != nil {
				return err
			}
		}
	}

	return s.txManager.CommitTx(ctx, tx)
}

func (s *webhookService) handlePaymentIntentFailed(ctx context.Context, event stripelib.Event) error {
	var intent stripelib.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return model.NewInvalidPayloadError(err)
	}
	if intent.ID == "" {
		return model.NewInvalidPayloadError(errors.New("payment intent has no id"))
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer s.txManager.RollbackTx(ctx, tx)

	payment, err := s.paymentRepo.GetByIntentIDForUpdate(ctx, tx, intent.ID)
	if err != nil {
		if errors.Is(err, model.ErrPaymentNotFound) {
			logger.Info().Str("payment_intent_id", intent.ID).Msg("payment_intent.payment_failed for unknown payment, ignoring")
			return nil
		}
		return err
	}

	if err := s.paymentRepo.UpdateStatusWithTx(ctx, tx, payment.ID, model.StatusFailed); err != nil {
		return err
	}
	return s.txManager.CommitTx(ctx, tx)
}

// =====================================================
// REFUND RECONCILIATION CORE
// =====================================================

// applyRefund locks the payment, applies the ledger update, and updates or
// creates the refund request for it, all inside one transaction. The
// notification is enqueued after commit.
func (s *webhookService) applyRefund(ctx context.Context, intentID string, totalRefunded decimal.Decimal, stripeRefundID string) error {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer s.txManager.RollbackTx(ctx, tx)

	payment, err := s.paymentRepo.GetByIntentIDForUpdate(ctx, tx, intentID)
	if err != nil {
		return err
	}

	update, err := s.ledger.Apply(ctx, tx, payment, totalRefunded)
	if err != nil {
		return err
	}

	request, err := s.reconcileRefundRequest(ctx, tx, payment, update, stripeRefundID)
	if err != nil {
		return err
	}

	if err := s.txManager.CommitTx(ctx, tx); err != nil {
		return err
	}

	s.notifyRefundProcessed(ctx, payment, request, update)
	return nil
}

// reconcileRefundRequest finds the newest active request for the payment,
// or creates one when the refund originated outside the request workflow
// (e.g. an admin refunding straight from the Stripe dashboard).
func (s *webhookService) reconcileRefundRequest(ctx context.Context, tx pgx.Tx, payment *model.Payment, update LedgerUpdate, stripeRefundID string) (*refundmodel.RefundRequest, error) {
	now := time.Now()

	request, err := s.refundRepo.GetActiveByPaymentIDWithTx(ctx, tx, payment.ID)
	if err != nil {
		if !errors.Is(err, refundmodel.ErrRefundRequestNotFound) {
			return nil, err
		}
		if !payment.HasBooking() {
			logger.Warn().
				Str("payment_id", payment.ID.String()).
				Msg("refund with no active request and no booking link, ledger updated only")
			return nil, nil
		}
		request = &refundmodel.RefundRequest{
			ID:               uuid.New(),
			BookingID:        *payment.BookingID,
			BookingType:      derefString(payment.BookingType),
			PaymentID:        &payment.ID,
			Reason:           "Gateway-initiated refund",
			Status:           refundmodel.StatusApproved,
			IsAdminInitiated: true,
			RequestedAt:      now,
		}
		request.AppendStaffNote("Refund processed automatically via Stripe webhook; no existing refund request was found for this payment.", now)
		if err := s.refundRepo.CreateWithTx(ctx, tx, request); err != nil {
			return nil, err
		}
	}

	// The webhook is the source of truth for the final amount and status.
	request.AmountToRefund = decimal.NullDecimal{Decimal: update.RefundedAmount, Valid: true}
	if stripeRefundID != "" {
		request.StripeRefundID = &stripeRefundID
	}
	if update.FullyRefunded() {
		request.Status = refundmodel.StatusRefunded
	} else {
		request.Status = refundmodel.StatusPartiallyRefunded
	}
	if request.ProcessedAt == nil {
		request.ProcessedAt = &now
	}

	if err := s.refundRepo.UpdateWithTx(ctx, tx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *webhookService) notifyRefundProcessed(ctx context.Context, payment *model.Payment, request *refundmodel.RefundRequest, update LedgerUpdate) {
	if request == nil || request.RequestEmail == "" {
		return
	}

	payload := map[string]interface{}{
		"refund_request_id": request.ID.String(),
		"amount":            update.RefundedAmount.StringFixed(2),
		"currency":          payment.Currency,
		"status":            request.Status,
	}
	if err := s.notifications.Enqueue(ctx, request.RequestEmail, refundmodel.TemplateRefundProcessed, payload); err != nil {
		logger.Warn().Err(err).Str("refund_request_id", request.ID.String()).Msg("failed to enqueue refund processed notification")
	}
}

func (s *webhookService) createPaymentFromIntent(ctx context.Context, tx pgx.Tx, intent *stripelib.PaymentIntent) (*model.Payment, error) {
	intentID := intent.ID
	payment := &model.Payment{
		ID:                    uuid.New(),
		StripePaymentIntentID: &intentID,
		Amount:                decimal.NewFromInt(intent.Amount).Shift(-2),
		Currency:              string(intent.Currency),
		Status:                model.StatusSucceeded,
		RefundedAmount:        decimal.Zero,
	}
	if payment.Currency == "" {
		payment.Currency = model.DefaultCurrency
	}

	// Booking linkage falls back to intent metadata when the payment row
	// was never created ahead of the charge.
	if rawID, ok := intent.Metadata["booking_id"]; ok {
		if bookingID, err := uuid.Parse(rawID); err == nil {
			payment.BookingID = &bookingID
			if bookingType, ok := intent.Metadata["booking_type"]; ok && bookingmodel.IsValidBookingType(bookingType) {
				payment.BookingType = &bookingType
			}
		}
	}

	if err := s.paymentRepo.CreateWithTx(ctx, tx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	bookingmodel "motoshop-backend/internal/domains/booking/model"
	bookingrepo "motoshop-backend/internal/domains/booking/repository"
	notifservice "motoshop-backend/internal/domains/notification/service"
	"motoshop-backend/internal/domains/payment/gateway"
	paymentmodel "motoshop-backend/internal/domains/payment/model"
	paymentrepo "motoshop-backend/internal/domains/payment/repository"
	"motoshop-backend/internal/domains/refund/model"
	"motoshop-backend/internal/domains/refund/policy"
	"motoshop-backend/internal/domains/refund/repository"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// REFUND SERVICE
// =====================================================

type refundService struct {
	refundRepo    repository.RefundRepoInterface
	bookingRepo   bookingrepo.BookingRepository
	paymentRepo   paymentrepo.PaymentRepoInterface
	stripeGateway gateway.StripeGateway
	notifications notifservice.NotificationService

	// baseURL is prepended to the verification path in emails.
	baseURL string
	// adminAlertEmail receives the new-pending-request alert.
	adminAlertEmail string
}

func NewRefundService(
	refundRepo repository.RefundRepoInterface,
	bookingRepo bookingrepo.BookingRepository,
	paymentRepo paymentrepo.PaymentRepoInterface,
	stripeGateway gateway.StripeGateway,
	notifications notifservice.NotificationService,
	baseURL string,
	adminAlertEmail string,
) RefundService {
	return &refundService{
		refundRepo:      refundRepo,
		bookingRepo:     bookingRepo,
		paymentRepo:     paymentRepo,
		stripeGateway:   stripeGateway,
		notifications:   notifications,
		baseURL:         strings.TrimRight(baseURL, "/"),
		adminAlertEmail: adminAlertEmail,
	}
}

// =====================================================
// USER OPERATIONS
// =====================================================

func (s *refundService) CreateUserRefundRequest(ctx context.Context, req model.CreateRefundRequest) (*model.RefundRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByReference(ctx, req.BookingReference)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(booking.CustomerEmail, req.Email) {
		return nil, model.NewEmailMismatchError()
	}

	payment, err := s.resolveRefundablePayment(ctx, booking)
	if err != nil {
		return nil, err
	}

	if err := s.guardNoActiveRequest(ctx, payment.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	token := uuid.New()
	request := &model.RefundRequest{
		ID:                uuid.New(),
		BookingID:         booking.ID,
		BookingType:       booking.Type,
		PaymentID:         &payment.ID,
		RequestEmail:      booking.CustomerEmail,
		Reason:            req.Reason,
		Status:            model.StatusUnverified,
		VerificationToken: &token,
		TokenCreatedAt:    &now,
		RequestedAt:       now,
	}

	if err := s.refundRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.enqueueNotification(ctx, request.RequestEmail, model.TemplateRefundVerification, map[string]interface{}{
		"booking_reference": booking.Reference,
		"verification_url":  fmt.Sprintf("%s/api/v1/refunds/verify?token=%s", s.baseURL, token),
		"expires_hours":     model.VerificationTokenTTLHours,
	})

	logger.Info().
		Str("refund_request_id", request.ID.String()).
		Str("booking_reference", booking.Reference).
		Msg("refund request created, verification email enqueued")

	return request.ToResponse(), nil
}

func (s *refundService) VerifyRefundRequest(ctx context.Context, token uuid.UUID) (*model.RefundRequestResponse, error) {
	request, err := s.refundRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrRefundRequestNotFound) {
			// Neutral message, no hint whether the token ever existed.
			return nil, model.NewTokenExpiredError()
		}
		return nil, err
	}

	if request.Status != model.StatusUnverified {
		return nil, model.NewAlreadyVerifiedError(request.Status)
	}
	if request.IsTokenExpired(time.Now()) {
		return nil, model.NewTokenExpiredError()
	}

	if request.PaymentID == nil {
		return nil, model.NewMissingPaymentError()
	}
	payment, err := s.paymentRepo.GetByID(ctx, *request.PaymentID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookingRepo.GetByID(ctx, request.BookingID)
	if err != nil {
		return nil, err
	}

	result := policy.Calculate(booking, payment.RefundPolicySnapshot, request.RequestedAt)

	request.Status = model.StatusPending
	request.AmountToRefund = decimal.NullDecimal{Decimal: result.EntitledAmount, Valid: true}
	request.RefundCalculationDetails = map[string]interface{}{
		"calculated_amount":        result.EntitledAmount.StringFixed(2),
		"policy_snapshot_used":     payment.RefundPolicySnapshot,
		"cancellation_datetime":    request.RequestedAt.UTC().Format(time.RFC3339),
		"booking_type":             request.BookingType,
		"full_calculation_details": result,
	}

	if err := s.refundRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	if s.adminAlertEmail != "" {
		s.enqueueNotification(ctx, s.adminAlertEmail, model.TemplateRefundAdminAlert, map[string]interface{}{
			"refund_request_id": request.ID.String(),
			"booking_reference": booking.Reference,
			"entitled_amount":   result.EntitledAmount.StringFixed(2),
			"policy_applied":    result.PolicyApplied,
		})
	}

	return request.ToResponse(), nil
}

// =====================================================
// ADMIN OPERATIONS
// =====================================================

func (s *refundService) AdminCreateRefundRequest(ctx context.Context, adminID uuid.UUID, req model.AdminCreateRefundRequest) (*model.RefundRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByReference(ctx, req.BookingReference)
	if err != nil {
		return nil, err
	}

	payment, err := s.resolveRefundablePayment(ctx, booking)
	if err != nil {
		return nil, err
	}

	if err := s.guardNoActiveRequest(ctx, payment.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	request := &model.RefundRequest{
		ID:               uuid.New(),
		BookingID:        booking.ID,
		BookingType:      booking.Type,
		PaymentID:        &payment.ID,
		RequestEmail:     booking.CustomerEmail,
		Reason:           req.Reason,
		Status:           model.StatusPending,
		IsAdminInitiated: true,
		RequestedAt:      now,
	}

	result := policy.Calculate(booking, payment.RefundPolicySnapshot, now)
	request.RefundCalculationDetails = map[string]interface{}{
		"calculated_amount":        result.EntitledAmount.StringFixed(2),
		"policy_snapshot_used":     payment.RefundPolicySnapshot,
		"cancellation_datetime":    now.UTC().Format(time.RFC3339),
		"booking_type":             request.BookingType,
		"full_calculation_details": result,
	}
	request.AmountToRefund = decimal.NullDecimal{Decimal: result.EntitledAmount, Valid: true}

	if req.AmountToRefund != nil {
		if err := s.validateAmount(*req.AmountToRefund, payment); err != nil {
			return nil, err
		}
		request.AmountToRefund = decimal.NullDecimal{Decimal: *req.AmountToRefund, Valid: true}
	}
	if req.StaffNotes != "" {
		request.AppendStaffNote(req.StaffNotes, now)
	}
	request.MarkProcessed(adminID, now)

	if err := s.refundRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	return request.ToResponse(), nil
}

func (s *refundService) GetRefundRequest(ctx context.Context, id uuid.UUID) (*model.RefundRequestResponse, error) {
	request, err := s.refundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return request.ToResponse(), nil
}

func (s *refundService) ListRefundRequests(ctx context.Context, status string, page, limit int) ([]*model.RefundRequestResponse, int, error) {
	if status != "" && !model.IsValidStatus(status) {
		return nil, 0, model.NewRefundError(model.ErrCodeInvalidTransition,
			fmt.Sprintf("Unknown refund status filter: %s", status), nil)
	}

	requests, total, err := s.refundRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*model.RefundRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, r.ToResponse())
	}
	return responses, total, nil
}

func (s *refundService) ReviewRefund(ctx context.Context, id, adminID uuid.UUID, req model.ReviewRefundRequest) (*model.RefundRequestResponse, error) {
	request, err := s.refundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(request.Status, model.StatusReviewedPendingApproval) {
		return nil, model.NewInvalidTransitionError(request.Status, model.StatusReviewedPendingApproval)
	}

	now := time.Now()
	if req.AmountToRefund != nil {
		if request.PaymentID != nil {
			payment, err := s.paymentRepo.GetByID(ctx, *request.PaymentID)
			if err != nil {
				return nil, err
			}
			if err := s.validateAmount(*req.AmountToRefund, payment); err != nil {
				return nil, err
			}
		}
		request.AmountToRefund = decimal.NullDecimal{Decimal: *req.AmountToRefund, Valid: true}
	}
	if req.StaffNotes != "" {
		request.AppendStaffNote(req.StaffNotes, now)
	}

	request.Status = model.StatusReviewedPendingApproval
	request.MarkProcessed(adminID, now)

	if err := s.refundRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	return request.ToResponse(), nil
}

func (s *refundService) ApproveRefund(ctx context.Context, id, adminID uuid.UUID) (*model.RefundRequestResponse, error) {
	request, err := s.refundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !request.CanBeApproved() {
		return nil, model.NewInvalidTransitionError(request.Status, model.StatusApproved)
	}
	if request.PaymentID == nil {
		return nil, model.NewMissingPaymentError()
	}

	payment, err := s.paymentRepo.GetByID(ctx, *request.PaymentID)
	if err != nil {
		return nil, err
	}
	if !payment.IsRefundable() {
		return nil, paymentmodel.NewPaymentNotRefundableError(payment.Status)
	}
	if payment.StripePaymentIntentID == nil || *payment.StripePaymentIntentID == "" {
		return nil, model.NewMissingGatewayIntentError()
	}

	if !request.AmountToRefund.Valid || !request.AmountToRefund.Decimal.IsPositive() {
		return nil, model.NewInvalidRefundAmountError("amount to refund must be greater than zero")
	}
	if request.AmountToRefund.Decimal.GreaterThan(payment.Amount) {
		return nil, model.NewAmountExceedsPaymentError()
	}

	booking, err := s.bookingRepo.GetByID(ctx, request.BookingID)
	if err != nil {
		return nil, err
	}

	// The approved state is committed before the gateway call. No row lock
	// is held across the network; the webhook reconciles the final state.
	now := time.Now()
	request.Status = model.StatusApproved
	request.MarkProcessed(adminID, now)
	if err := s.refundRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	resp, err := s.stripeGateway.InitiateRefund(ctx, gateway.RefundRequest{
		PaymentIntentID: *payment.StripePaymentIntentID,
		Amount:          request.AmountToRefund.Decimal,
		Currency:        payment.Currency,
		Metadata: map[string]string{
			"refund_request_id": request.ID.String(),
			"admin_id":          adminID.String(),
			"booking_reference": booking.Reference,
			"booking_type":      booking.Type,
		},
	})
	if err != nil {
		failedAt := time.Now()
		request.Status = model.StatusFailed
		request.AppendStaffNote(fmt.Sprintf("Stripe initiation failed: %v", err), failedAt)
		if updateErr := s.refundRepo.Update(ctx, request); updateErr != nil {
			logger.Error().Err(updateErr).
				Str("refund_request_id", request.ID.String()).
				Msg("failed to persist failed refund state")
		}
		return nil, model.NewGatewayRefundFailedError(err)
	}

	request.StripeRefundID = &resp.RefundID
	if err := s.refundRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.enqueueNotification(ctx, request.RequestEmail, model.TemplateRefundApproved, map[string]interface{}{
		"booking_reference": booking.Reference,
		"amount":            request.AmountToRefund.Decimal.StringFixed(2),
	})

	logger.Info().
		Str("refund_request_id", request.ID.String()).
		Str("stripe_refund_id", resp.RefundID).
		Msg("refund initiated with gateway")

	return request.ToResponse(), nil
}

func (s *refundService) RejectRefund(ctx context.Context, id, adminID uuid.UUID, req model.RejectRefundRequest) (*model.RefundRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	request, err := s.refundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !request.CanBeRejected() {
		return nil, model.NewInvalidTransitionError(request.Status, model.StatusRejected)
	}

	now := time.Now()
	request.Status = model.StatusRejected
	request.RejectionReason = &req.RejectionReason
	request.MarkProcessed(adminID, now)

	if err := s.refundRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	if req.NotifyCustomer && request.RequestEmail != "" {
		s.enqueueNotification(ctx, request.RequestEmail, model.TemplateRefundRejected, map[string]interface{}{
			"refund_request_id": request.ID.String(),
			"rejection_reason":  req.RejectionReason,
		})
	}

	return request.ToResponse(), nil
}

// =====================================================
// EXPIRY SWEEP
// =====================================================

// ExpireUnverifiedRequests deletes stale unverified requests one by one.
// A notification failure never blocks the deletion, and one bad row never
// stops the sweep.
func (s *refundService) ExpireUnverifiedRequests(ctx context.Context, olderThanHours, limit int) (int, error) {
	if olderThanHours <= 0 {
		olderThanHours = model.VerificationTokenTTLHours
	}
	cutoff := time.Now().Add(-time.Duration(olderThanHours) * time.Hour)

	expired, err := s.refundRepo.GetExpiredUnverified(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, request := range expired {
		if err := s.refundRepo.Delete(ctx, request.ID); err != nil {
			logger.Error().Err(err).
				Str("refund_request_id", request.ID.String()).
				Msg("failed to delete expired refund request")
			continue
		}
		removed++

		if request.RequestEmail != "" {
			s.enqueueNotification(ctx, request.RequestEmail, model.TemplateRefundRequestExpired, map[string]interface{}{
				"refund_request_id": request.ID.String(),
			})
		}
	}

	if removed > 0 {
		logger.Info().Int("removed", removed).Msg("expired unverified refund requests")
	}
	return removed, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *refundService) resolveRefundablePayment(ctx context.Context, booking *bookingmodel.Booking) (*paymentmodel.Payment, error) {
	payment, err := s.paymentRepo.GetLatestByBookingID(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, paymentmodel.ErrPaymentNotFound) {
			return nil, model.NewMissingPaymentError()
		}
		return nil, err
	}
	if !payment.IsRefundable() {
		return nil, paymentmodel.NewPaymentNotRefundableError(payment.Status)
	}
	return payment, nil
}

func (s *refundService) guardNoActiveRequest(ctx context.Context, paymentID uuid.UUID) error {
	_, err := s.refundRepo.GetActiveByPaymentID(ctx, paymentID)
	if err == nil {
		return model.NewDuplicateActiveRequestError()
	}
	if errors.Is(err, model.ErrRefundRequestNotFound) {
		return nil
	}
	return err
}

func (s *refundService) validateAmount(amount decimal.Decimal, payment *paymentmodel.Payment) error {
	if !amount.IsPositive() {
		return model.NewInvalidRefundAmountError("amount to refund must be greater than zero")
	}
	if amount.GreaterThan(payment.Amount) {
		return model.NewAmountExceedsPaymentError()
	}
	return nil
}

func (s *refundService) enqueueNotification(ctx context.Context, recipient, templateKey string, payload map[string]interface{}) {
	if err := s.notifications.Enqueue(ctx, recipient, templateKey, payload); err != nil {
		logger.Warn().Err(err).
			Str("template_key", templateKey).
			Msg("failed to enqueue notification")
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingmodel "motoshop-backend/internal/domains/booking/model"
	"motoshop-backend/internal/domains/payment/gateway"
	paymentmodel "motoshop-backend/internal/domains/payment/model"
	"motoshop-backend/internal/domains/refund/model"
	"motoshop-backend/internal/domains/refund/policy"
)

// =====================================================
// FAKES
// =====================================================

type memRefundRepo struct {
	requests  []*model.RefundRequest
	deleteErr map[uuid.UUID]error
}

func (m *memRefundRepo) Create(ctx context.Context, request *model.RefundRequest) error {
	m.requests = append(m.requests, request)
	return nil
}

func (m *memRefundRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, request *model.RefundRequest) error {
	return m.Create(ctx, request)
}

func (m *memRefundRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	for _, r := range m.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, model.ErrRefundRequestNotFound
}

func (m *memRefundRepo) GetByVerificationToken(ctx context.Context, token uuid.UUID) (*model.RefundRequest, error) {
	for _, r := range m.requests {
		if r.VerificationToken != nil && *r.VerificationToken == token {
			return r, nil
		}
	}
	return nil, model.ErrRefundRequestNotFound
}

func (m *memRefundRepo) GetActiveByPaymentID(ctx context.Context, paymentID uuid.UUID) (*model.RefundRequest, error) {
	for i := len(m.requests) - 1; i >= 0; i-- {
		r := m.requests[i]
		if r.PaymentID != nil && *r.PaymentID == paymentID && r.IsActive() {
			return r, nil
		}
	}
	return nil, model.ErrRefundRequestNotFound
}

func (m *memRefundRepo) GetActiveByPaymentIDWithTx(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (*model.RefundRequest, error) {
	return m.GetActiveByPaymentID(ctx, paymentID)
}

func (m *memRefundRepo) Update(ctx context.Context, request *model.RefundRequest) error {
	for i, r := range m.requests {
		if r.ID == request.ID {
			m.requests[i] = request
			return nil
		}
	}
	return model.ErrRefundRequestNotFound
}

func (m *memRefundRepo) UpdateWithTx(ctx context.Context, tx pgx.Tx, request *model.RefundRequest) error {
	return m.Update(ctx, request)
}

func (m *memRefundRepo) List(ctx context.Context, status string, page, limit int) ([]*model.RefundRequest, int, error) {
	if status == "" {
		return m.requests, len(m.requests), nil
	}
	var out []*model.RefundRequest
	for _, r := range m.requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *memRefundRepo) GetExpiredUnverified(ctx context.Context, olderThan time.Time, limit int) ([]*model.RefundRequest, error) {
	var out []*model.RefundRequest
	for _, r := range m.requests {
		if r.Status == model.StatusUnverified && r.TokenCreatedAt != nil && r.TokenCreatedAt.Before(olderThan) {
			out = append(out, r)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memRefundRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err, ok := m.deleteErr[id]; ok {
		return err
	}
	for i, r := range m.requests {
		if r.ID == id {
			m.requests = append(m.requests[:i], m.requests[i+1:]...)
			return nil
		}
	}
	return model.ErrRefundRequestNotFound
}

type memBookingRepo struct {
	bookings map[uuid.UUID]*bookingmodel.Booking
}

func (m *memBookingRepo) Create(ctx context.Context, booking *bookingmodel.Booking) error {
	m.bookings[booking.ID] = booking
	return nil
}

func (m *memBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*bookingmodel.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingmodel.ErrBookingNotFound
	}
	return b, nil
}

func (m *memBookingRepo) GetByReference(ctx context.Context, reference string) (*bookingmodel.Booking, error) {
	for _, b := range m.bookings {
		if b.Reference == reference {
			return b, nil
		}
	}
	return nil, bookingmodel.ErrBookingNotFound
}

func (m *memBookingRepo) GetByIDForUpdateWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*bookingmodel.Booking, error) {
	return m.GetByID(ctx, id)
}

func (m *memBookingRepo) UpdateLedgerWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amountPaid decimal.Decimal, paymentStatus, status string) error {
	b, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	b.AmountPaid = amountPaid
	b.PaymentStatus = paymentStatus
	b.Status = status
	return nil
}

func (m *memBookingRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	b, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	b.PaymentStatus = paymentStatus
	return nil
}

type memPaymentRepo struct {
	payments map[uuid.UUID]*paymentmodel.Payment
}

func (m *memPaymentRepo) Create(ctx context.Context, payment *paymentmodel.Payment) error {
	m.payments[payment.ID] = payment
	return nil
}

func (m *memPaymentRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, payment *paymentmodel.Payment) error {
	return m.Create(ctx, payment)
}

func (m *memPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*paymentmodel.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, paymentmodel.ErrPaymentNotFound
	}
	return p, nil
}

func (m *memPaymentRepo) GetByIntentID(ctx context.Context, intentID string) (*paymentmodel.Payment, error) {
	for _, p := range m.payments {
		if p.StripePaymentIntentID != nil && *p.StripePaymentIntentID == intentID {
			return p, nil
		}
	}
	return nil, paymentmodel.ErrPaymentNotFound
}

func (m *memPaymentRepo) GetLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*paymentmodel.Payment, error) {
	for _, p := range m.payments {
		if p.BookingID != nil && *p.BookingID == bookingID {
			return p, nil
		}
	}
	return nil, paymentmodel.ErrPaymentNotFound
}

func (m *memPaymentRepo) GetByIntentIDForUpdate(ctx context.Context, tx pgx.Tx, intentID string) (*paymentmodel.Payment, error) {
	return m.GetByIntentID(ctx, intentID)
}

func (m *memPaymentRepo) UpdateLedgerWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, refundedAmount decimal.Decimal, status string) error {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.RefundedAmount = refundedAmount
	p.Status = status
	return nil
}

func (m *memPaymentRepo) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Status = status
	return nil
}

func (m *memPaymentRepo) SetPolicySnapshotIfEmptyWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, snapshot policy.Snapshot) error {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.RefundPolicySnapshot.IsEmpty() {
		p.RefundPolicySnapshot = snapshot
	}
	return nil
}

type memGateway struct {
	calls     []gateway.RefundRequest
	refundID  string
	returnErr error
}

func (m *memGateway) InitiateRefund(ctx context.Context, req gateway.RefundRequest) (*gateway.RefundResponse, error) {
	m.calls = append(m.calls, req)
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &gateway.RefundResponse{RefundID: m.refundID, Status: "pending"}, nil
}

type memNotifications struct {
	sent []struct {
		recipient   string
		templateKey string
		payload     map[string]interface{}
	}
}

func (m *memNotifications) Enqueue(ctx context.Context, recipient, templateKey string, payload map[string]interface{}) error {
	m.sent = append(m.sent, struct {
		recipient   string
		templateKey string
		payload     map[string]interface{}
	}{recipient, templateKey, payload})
	return nil
}

func (m *memNotifications) Deliver(ctx context.Context, notificationID string) error { return nil }

func (m *memNotifications) ProcessPending(ctx context.Context, limit int) error { return nil }

func (m *memNotifications) templates() []string {
	var out []string
	for _, n := range m.sent {
		out = append(out, n.templateKey)
	}
	return out
}

// =====================================================
// FIXTURE
// =====================================================

type refundFixture struct {
	service       RefundService
	refundRepo    *memRefundRepo
	bookingRepo   *memBookingRepo
	paymentRepo   *memPaymentRepo
	gateway       *memGateway
	notifications *memNotifications
}

func newRefundFixture() *refundFixture {
	f := &refundFixture{
		refundRepo:    &memRefundRepo{deleteErr: map[uuid.UUID]error{}},
		bookingRepo:   &memBookingRepo{bookings: map[uuid.UUID]*bookingmodel.Booking{}},
		paymentRepo:   &memPaymentRepo{payments: map[uuid.UUID]*paymentmodel.Payment{}},
		gateway:       &memGateway{refundID: "re_fixture_1"},
		notifications: &memNotifications{},
	}
	f.service = NewRefundService(
		f.refundRepo,
		f.bookingRepo,
		f.paymentRepo,
		f.gateway,
		f.notifications,
		"https://shop.example.com",
		"admin@example.com",
	)
	return f
}

func fixtureSnapshot() policy.Snapshot {
	return policy.Snapshot{
		policy.KeyDepositEnabled: true,

		policy.TrackPrefixFullPayment + policy.SuffixFullRefundDays:          7,
		policy.TrackPrefixFullPayment + policy.SuffixPartialRefundDays:       3,
		policy.TrackPrefixFullPayment + policy.SuffixPartialRefundPercentage: "50.00",
		policy.TrackPrefixFullPayment + policy.SuffixMinimalRefundDays:       1,
		policy.TrackPrefixFullPayment + policy.SuffixMinimalRefundPercentage: "10.00",

		policy.TrackPrefixDeposit + policy.SuffixFullRefundDays:          14,
		policy.TrackPrefixDeposit + policy.SuffixPartialRefundDays:       7,
		policy.TrackPrefixDeposit + policy.SuffixPartialRefundPercentage: "25.00",
		policy.TrackPrefixDeposit + policy.SuffixMinimalRefundDays:       3,
		policy.TrackPrefixDeposit + policy.SuffixMinimalRefundPercentage: "5.00",
	}
}

func (f *refundFixture) seedHireBooking(t *testing.T) (*bookingmodel.Booking, *paymentmodel.Payment) {
	t.Helper()

	pickup := time.Now().Add(10 * 24 * time.Hour)
	booking := &bookingmodel.Booking{
		ID:            uuid.New(),
		Reference:     "HIRE-2026-0042",
		Type:          bookingmodel.BookingTypeHire,
		CustomerEmail: "rider@example.com",
		Status:        bookingmodel.StatusConfirmed,
		PaymentMethod: bookingmodel.PaymentMethodOnlineFull,
		PaymentStatus: bookingmodel.PaymentStatusPaid,
		Amount:        decimal.RequireFromString("500.00"),
		AmountPaid:    decimal.RequireFromString("500.00"),
		PickupAt:      &pickup,
	}
	require.NoError(t, f.bookingRepo.Create(context.Background(), booking))

	intentID := "pi_fixture_1"
	bookingType := booking.Type
	payment := &paymentmodel.Payment{
		ID:                    uuid.New(),
		StripePaymentIntentID: &intentID,
		BookingID:             &booking.ID,
		BookingType:           &bookingType,
		Amount:                booking.Amount,
		Currency:              "aud",
		Status:                paymentmodel.StatusSucceeded,
		RefundedAmount:        decimal.Zero,
		RefundPolicySnapshot:  fixtureSnapshot(),
	}
	require.NoError(t, f.paymentRepo.Create(context.Background(), payment))
	return booking, payment
}

// =====================================================
// CREATE + VERIFY
// =====================================================

func TestCreateUserRefundRequest(t *testing.T) {
	f := newRefundFixture()
	booking, payment := f.seedHireBooking(t)

	resp, err := f.service.CreateUserRefundRequest(context.Background(), model.CreateRefundRequest{
		BookingReference: booking.Reference,
		Email:            "Rider@Example.com",
		Reason:           "change of plans, no longer need the bike",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusUnverified, resp.Status)
	assert.Equal(t, booking.ID, resp.BookingID)
	require.NotNil(t, resp.PaymentID)
	assert.Equal(t, payment.ID, *resp.PaymentID)

	require.Len(t, f.refundRepo.requests, 1)
	stored := f.refundRepo.requests[0]
	require.NotNil(t, stored.VerificationToken)
	require.NotNil(t, stored.TokenCreatedAt)

	require.Len(t, f.notifications.sent, 1)
	note := f.notifications.sent[0]
	assert.Equal(t, model.TemplateRefundVerification, note.templateKey)
	assert.Equal(t, booking.CustomerEmail, note.recipient)
	assert.Contains(t, note.payload["verification_url"], stored.VerificationToken.String())
}

func TestCreateUserRefundRequestEmailMismatch(t *testing.T) {
	f := newRefundFixture()
	booking, _ := f.seedHireBooking(t)

	_, err := f.service.CreateUserRefundRequest(context.Background(), model.CreateRefundRequest{
		BookingReference: booking.Reference,
		Email:            "someone.else@example.com",
		Reason:           "not my booking but worth a try",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrEmailMismatch))
	assert.Empty(t, f.refundRepo.requests)
}

func TestCreateUserRefundRequestDuplicateGuard(t *testing.T) {
	f := newRefundFixture()
	booking, payment := f.seedHireBooking(t)

	existing := &model.RefundRequest{
		ID:        uuid.New(),
		BookingID: booking.ID,
		PaymentID: &payment.ID,
		Status:    model.StatusPending,
	}
	require.NoError(t, f.refundRepo.Create(context.Background(), existing))

	_, err := f.service.CreateUserRefundRequest(context.Background(), model.CreateRefundRequest{
		BookingReference: booking.Reference,
		Email:            booking.CustomerEmail,
		Reason:           "duplicate attempt on same payment",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDuplicateActiveRequest))
	assert.Contains(t, err.Error(), "A refund request for this booking is already in progress.")
	assert.Len(t, f.refundRepo.requests, 1, "no second row created")
}

func TestCreateUserRefundRequestNoPayment(t *testing.T) {
	f := newRefundFixture()
	booking, payment := f.seedHireBooking(t)
	delete(f.paymentRepo.payments, payment.ID)

	_, err := f.service.CreateUserRefundRequest(context.Background(), model.CreateRefundRequest{
		BookingReference: booking.Reference,
		Email:            booking.CustomerEmail,
		Reason:           "cancelling before any payment landed",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMissingPayment))
}

func TestVerifyRefundRequest(t *testing.T) {
	f := newRefundFixture()
	booking, _ := f.seedHireBooking(t)

	_, err := f.service.CreateUserRefundRequest(context.Background(), model.CreateRefundRequest{
		BookingReference: booking.Reference,
		Email:            booking.CustomerEmail,
		Reason:           "travel dates changed, cannot make the pickup",
	})
	require.NoError(t, err)

	token := *f.refundRepo.requests[0].VerificationToken
	verified, err := f.service.VerifyRefundRequest(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, verified.Status)
	require.NotNil(t, verified.AmountToRefund)
	// 10 days before pickup on a 7-day full-refund tier.
	assert.True(t, verified.AmountToRefund.Equal(decimal.RequireFromString("500.00")),
		"got %s", verified.AmountToRefund)

	require.NotNil(t, verified.Calculation)
	assert.Equal(t, "500.00", verified.Calculation["calculated_amount"])
	assert.Equal(t, booking.Type, verified.Calculation["booking_type"])
	assert.NotNil(t, verified.Calculation["policy_snapshot_used"])

	assert.Equal(t, []string{model.TemplateRefundVerification, model.TemplateRefundAdminAlert}, f.notifications.templates())
	assert.Equal(t, "admin@example.com", f.notifications.sent[1].recipient)
}

func TestVerifyRefundRequestUnknownToken(t *testing.T) {
	f := newRefundFixture()

	_, err := f.service.VerifyRefundRequest(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTokenExpired))
	assert.Contains(t, err.Error(), "Refund request not found or expired")
}

func TestVerifyRefundRequestExpiredToken(t *testing.T) {
	f := newRefundFixture()
	booking, _ := f.seedHireBooking(t)

	_, err := f.service.CreateUserRefundRequest(context.Background(), model.CreateRefundRequest{
		BookingReference: booking.Reference,
		Email:            booking.CustomerEmail,
		Reason:           "cancelling, found a better deal elsewhere",
	})
	require.NoError(t, err)

	stored := f.refundRepo.requests[0]
	stale := time.Now().Add(-25 * time.Hour)
	stored.TokenCreatedAt = &stale

	_, err = f.service.VerifyRefundRequest(context.Background(), *stored.VerificationToken)

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTokenExpired))
	assert.Equal(t, model.StatusUnverified, stored.Status, "expired verification does not transition")
}

func TestVerifyRefundRequestAlreadyVerified(t *testing.T) {
	f := newRefundFixture()
	booking, _ := f.seedHireBooking(t)

	_, err := f.service.CreateUserRefundRequest(context.Background(), model.CreateRefundRequest{
		BookingReference: booking.Reference,
		Email:            booking.CustomerEmail,
		Reason:           "double-clicking the email link",
	})
	require.NoError(t, err)
	token := *f.refundRepo.requests[0].VerificationToken

	_, err = f.service.VerifyRefundRequest(context.Background(), token)
	require.NoError(t, err)

	_, err = f.service.VerifyRefundRequest(context.Background(), token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyVerified))
}

// =====================================================
// ADMIN DECISIONS
// =====================================================

func (f *refundFixture) seedPendingRequest(t *testing.T) (*model.RefundRequest, *bookingmodel.Booking, *paymentmodel.Payment) {
	t.Helper()

	booking, payment := f.seedHireBooking(t)
	request := &model.RefundRequest{
		ID:             uuid.New(),
		BookingID:      booking.ID,
		BookingType:    booking.Type,
		PaymentID:      &payment.ID,
		RequestEmail:   booking.CustomerEmail,
		Reason:         "seeded pending request",
		Status:         model.StatusPending,
		AmountToRefund: decimal.NullDecimal{Decimal: decimal.RequireFromString("250.00"), Valid: true},
		RequestedAt:    time.Now(),
	}
	require.NoError(t, f.refundRepo.Create(context.Background(), request))
	return request, booking, payment
}

func TestApproveRefund(t *testing.T) {
	f := newRefundFixture()
	request, booking, _ := f.seedPendingRequest(t)
	adminID := uuid.New()

	resp, err := f.service.ApproveRefund(context.Background(), request.ID, adminID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusApproved, resp.Status)
	require.NotNil(t, resp.StripeRefundID)
	assert.Equal(t, "re_fixture_1", *resp.StripeRefundID)
	require.NotNil(t, resp.ProcessedBy)
	assert.Equal(t, adminID, *resp.ProcessedBy)

	require.Len(t, f.gateway.calls, 1)
	call := f.gateway.calls[0]
	assert.Equal(t, "pi_fixture_1", call.PaymentIntentID)
	assert.True(t, call.Amount.Equal(decimal.RequireFromString("250.00")))
	assert.Equal(t, request.ID.String(), call.Metadata["refund_request_id"])
	assert.Equal(t, adminID.String(), call.Metadata["admin_id"])
	assert.Equal(t, booking.Reference, call.Metadata["booking_reference"])
	assert.Equal(t, booking.Type, call.Metadata["booking_type"])

	assert.Contains(t, f.notifications.templates(), model.TemplateRefundApproved)
}

func TestApproveRefundGatewayFailure(t *testing.T) {
	f := newRefundFixture()
	request, _, _ := f.seedPendingRequest(t)
	f.gateway.returnErr = errors.New("card_declined")

	_, err := f.service.ApproveRefund(context.Background(), request.ID, uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrGatewayRefundFailed))

	stored, getErr := f.refundRepo.GetByID(context.Background(), request.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.StatusFailed, stored.Status)
	assert.Contains(t, stored.StaffNotes, "Stripe initiation failed")
	assert.Contains(t, stored.StaffNotes, "card_declined")
	assert.True(t, stored.AmountToRefund.Valid, "amount preserved for retry")
}

func TestApproveRefundRetryAfterGatewayFailure(t *testing.T) {
	f := newRefundFixture()
	request, _, _ := f.seedPendingRequest(t)
	adminID := uuid.New()

	f.gateway.returnErr = errors.New("api_connection_error")
	_, err := f.service.ApproveRefund(context.Background(), request.ID, adminID)
	require.Error(t, err)

	stored, getErr := f.refundRepo.GetByID(context.Background(), request.ID)
	require.NoError(t, getErr)
	require.Equal(t, model.StatusFailed, stored.Status)

	// A failed request stays approvable; the retry reuses the preserved
	// amount without the admin re-entering it.
	f.gateway.returnErr = nil
	resp, err := f.service.ApproveRefund(context.Background(), request.ID, adminID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusApproved, resp.Status)
	require.NotNil(t, resp.StripeRefundID)
	assert.Equal(t, "re_fixture_1", *resp.StripeRefundID)
	require.Len(t, f.gateway.calls, 2)
	assert.True(t, f.gateway.calls[1].Amount.Equal(decimal.RequireFromString("250.00")))
}

func TestApproveRefundInvalidAmount(t *testing.T) {
	f := newRefundFixture()
	request, _, _ := f.seedPendingRequest(t)
	request.AmountToRefund = decimal.NullDecimal{}

	_, err := f.service.ApproveRefund(context.Background(), request.ID, uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidRefundAmount))
	assert.Empty(t, f.gateway.calls)
}

func TestApproveRefundAmountExceedsPayment(t *testing.T) {
	f := newRefundFixture()
	request, _, _ := f.seedPendingRequest(t)
	request.AmountToRefund = decimal.NullDecimal{Decimal: decimal.RequireFromString("750.00"), Valid: true}

	_, err := f.service.ApproveRefund(context.Background(), request.ID, uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAmountExceedsPayment))
	assert.Empty(t, f.gateway.calls)
}

func TestApproveRefundFromTerminalStatus(t *testing.T) {
	f := newRefundFixture()
	request, _, _ := f.seedPendingRequest(t)
	request.Status = model.StatusRejected

	_, err := f.service.ApproveRefund(context.Background(), request.ID, uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidTransition))
}

func TestReviewRefund(t *testing.T) {
	f := newRefundFixture()
	request, _, _ := f.seedPendingRequest(t)
	adminID := uuid.New()
	adjusted := decimal.RequireFromString("100.00")

	resp, err := f.service.ReviewRefund(context.Background(), request.ID, adminID, model.ReviewRefundRequest{
		AmountToRefund: &adjusted,
		StaffNotes:     "reduced per damage assessment",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusReviewedPendingApproval, resp.Status)
	require.NotNil(t, resp.AmountToRefund)
	assert.True(t, resp.AmountToRefund.Equal(adjusted))
	assert.Contains(t, resp.StaffNotes, "reduced per damage assessment")
}

func TestRejectRefundWithNotification(t *testing.T) {
	f := newRefundFixture()
	request, _, _ := f.seedPendingRequest(t)

	resp, err := f.service.RejectRefund(context.Background(), request.ID, uuid.New(), model.RejectRefundRequest{
		RejectionReason: "outside the cancellation window",
		NotifyCustomer:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusRejected, resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "outside the cancellation window", *resp.RejectionReason)
	assert.Contains(t, f.notifications.templates(), model.TemplateRefundRejected)
}

func TestRejectRefundTerminalStateImmutable(t *testing.T) {
	f := newRefundFixture()
	request, _, _ := f.seedPendingRequest(t)
	request.Status = model.StatusRefunded

	_, err := f.service.RejectRefund(context.Background(), request.ID, uuid.New(), model.RejectRefundRequest{
		RejectionReason: "too late, already refunded",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidTransition))
}

func TestAdminCreateRefundRequest(t *testing.T) {
	f := newRefundFixture()
	booking, _ := f.seedHireBooking(t)
	adminID := uuid.New()
	amount := decimal.RequireFromString("120.00")

	resp, err := f.service.AdminCreateRefundRequest(context.Background(), adminID, model.AdminCreateRefundRequest{
		BookingReference: booking.Reference,
		Reason:           "customer called the store directly",
		AmountToRefund:   &amount,
		StaffNotes:       "phoned in on Monday",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, resp.Status)
	assert.True(t, resp.IsAdminInitiated)
	require.NotNil(t, resp.AmountToRefund)
	assert.True(t, resp.AmountToRefund.Equal(amount), "manual amount overrides the calculated one")
	assert.Contains(t, resp.StaffNotes, "phoned in on Monday")
	require.NotNil(t, resp.Calculation)
}

// =====================================================
// EXPIRY SWEEP
// =====================================================

func TestExpireUnverifiedRequests(t *testing.T) {
	f := newRefundFixture()
	booking, payment := f.seedHireBooking(t)

	stale := time.Now().Add(-30 * time.Hour)
	fresh := time.Now().Add(-1 * time.Hour)

	mkRequest := func(tokenAt time.Time, email string) *model.RefundRequest {
		token := uuid.New()
		return &model.RefundRequest{
			ID:                uuid.New(),
			BookingID:         booking.ID,
			BookingType:       booking.Type,
			PaymentID:         &payment.ID,
			RequestEmail:      email,
			Status:            model.StatusUnverified,
			VerificationToken: &token,
			TokenCreatedAt:    &tokenAt,
		}
	}

	expired1 := mkRequest(stale, "one@example.com")
	expired2 := mkRequest(stale, "two@example.com")
	keep := mkRequest(fresh, "three@example.com")
	for _, r := range []*model.RefundRequest{expired1, expired2, keep} {
		require.NoError(t, f.refundRepo.Create(context.Background(), r))
	}

	// A failing deletion must not stop the sweep.
	f.refundRepo.deleteErr[expired1.ID] = errors.New("row locked")

	removed, err := f.service.ExpireUnverifiedRequests(context.Background(), 24, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	_, err = f.refundRepo.GetByID(context.Background(), expired2.ID)
	assert.True(t, errors.Is(err, model.ErrRefundRequestNotFound))
	_, err = f.refundRepo.GetByID(context.Background(), keep.ID)
	assert.NoError(t, err, "fresh unverified request survives")

	assert.Equal(t, []string{model.TemplateRefundRequestExpired}, f.notifications.templates())
	assert.Equal(t, "two@example.com", f.notifications.sent[0].recipient)
}

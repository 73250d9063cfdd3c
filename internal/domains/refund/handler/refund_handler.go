package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	bookingmodel "motoshop-backend/internal/domains/booking/model"
	paymentmodel "motoshop-backend/internal/domains/payment/model"
	"motoshop-backend/internal/domains/refund/model"
	"motoshop-backend/internal/domains/refund/service"
	"motoshop-backend/internal/shared/response"
)

// =====================================================
// PUBLIC REFUND HANDLER
// =====================================================

type RefundHandler struct {
	refundService service.RefundService
}

func NewRefundHandler(refundService service.RefundService) *RefundHandler {
	return &RefundHandler{refundService: refundService}
}

// Create handles POST /api/v1/refunds, the public refund request form.
func (h *RefundHandler) Create(c *gin.Context) {
	var req model.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.refundService.CreateUserRefundRequest(c.Request.Context(), req)
	if err != nil {
		writeRefundError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"id":      resp.ID,
		"status":  resp.Status,
		"message": "Please check your email to verify your refund request.",
	})
}

// Verify handles GET /api/v1/refunds/verify?token=.
func (h *RefundHandler) Verify(c *gin.Context) {
	token, err := uuid.Parse(c.Query("token"))
	if err != nil {
		// Same neutral message as an expired token; no hint which it was.
		response.NotFound(c, "Refund request not found or expired")
		return
	}

	resp, err := h.refundService.VerifyRefundRequest(c.Request.Context(), token)
	if err != nil {
		writeRefundError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// =====================================================
// ERROR MAPPING
// =====================================================

// writeRefundError translates service errors into the HTTP taxonomy:
// validation 422, not-found 404, state guards and duplicates 409,
// gateway failures 502, everything else 500.
func writeRefundError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", validationErrs)
		return
	}

	var refundErr *model.RefundError
	if errors.As(err, &refundErr) {
		switch {
		case errors.Is(err, model.ErrRefundRequestNotFound),
			errors.Is(err, model.ErrTokenExpired),
			errors.Is(err, model.ErrSettingsNotFound):
			response.ErrorResponse(c, http.StatusNotFound, refundErr.Code, refundErr.Message)
		case errors.Is(err, model.ErrDuplicateActiveRequest),
			errors.Is(err, model.ErrInvalidTransition),
			errors.Is(err, model.ErrAlreadyVerified),
			errors.Is(err, model.ErrSettingsSingleton):
			response.ErrorResponse(c, http.StatusConflict, refundErr.Code, refundErr.Message)
		case errors.Is(err, model.ErrInvalidRefundAmount),
			errors.Is(err, model.ErrAmountExceedsPayment),
			errors.Is(err, model.ErrEmailMismatch),
			errors.Is(err, model.ErrMissingPayment),
			errors.Is(err, model.ErrMissingGatewayIntent):
			response.ErrorResponse(c, http.StatusBadRequest, refundErr.Code, refundErr.Message)
		case errors.Is(err, model.ErrGatewayRefundFailed):
			response.ErrorResponse(c, http.StatusBadGateway, refundErr.Code, refundErr.Message)
		default:
			response.ErrorResponse(c, http.StatusBadRequest, refundErr.Code, refundErr.Message)
		}
		return
	}

	if errors.Is(err, bookingmodel.ErrBookingNotFound) {
		response.NotFound(c, "Booking not found")
		return
	}
	if errors.Is(err, paymentmodel.ErrPaymentNotFound) {
		response.NotFound(c, "Payment not found")
		return
	}
	var paymentErr *paymentmodel.PaymentError
	if errors.As(err, &paymentErr) {
		response.ErrorResponse(c, http.StatusBadRequest, paymentErr.Code, paymentErr.Message)
		return
	}

	response.InternalServerError(c, "Something went wrong")
}

package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"motoshop-backend/internal/domains/payment/model"
	"motoshop-backend/internal/domains/payment/service"
	"motoshop-backend/internal/shared/response"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// WEBHOOK HANDLER
// =====================================================

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// HandleStripeWebhook handles POST /webhooks/stripe.
//
// Response contract with Stripe: 400 only for signature or payload
// failures, 200 for everything else. A handler failure after the audit
// row is written still answers 200; the retry job picks it up.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidPayload, "Failed to read request body")
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidSignature, "Missing Stripe-Signature header")
		return
	}

	if err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, sigHeader); err != nil {
		if errors.Is(err, model.ErrInvalidSignature) || errors.Is(err, model.ErrInvalidPayload) {
			response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidSignature, "Webhook verification failed")
			return
		}
		// The audit row could not be written. Let Stripe redeliver.
		logger.Error().Err(err).Msg("webhook processing failed before audit record")
		response.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Webhook could not be recorded")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"received": true})
}

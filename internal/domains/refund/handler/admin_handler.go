package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"motoshop-backend/internal/domains/refund/model"
	"motoshop-backend/internal/domains/refund/service"
	"motoshop-backend/internal/shared/response"
)

// =====================================================
// ADMIN REFUND HANDLER
// =====================================================

type AdminRefundHandler struct {
	refundService   service.RefundService
	settingsService service.SettingsService
}

func NewAdminRefundHandler(refundService service.RefundService, settingsService service.SettingsService) *AdminRefundHandler {
	return &AdminRefundHandler{
		refundService:   refundService,
		settingsService: settingsService,
	}
}

// adminID reads the authenticated admin's id set by the auth middleware.
func adminID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

// List handles GET /api/v1/admin/refunds?status=&page=&limit=.
func (h *AdminRefundHandler) List(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	requests, total, err := h.refundService.ListRefundRequests(c.Request.Context(), status, page, limit)
	if err != nil {
		writeRefundError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, requests, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Create handles POST /api/v1/admin/refunds.
func (h *AdminRefundHandler) Create(c *gin.Context) {
	id, ok := adminID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.AdminCreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.refundService.AdminCreateRefundRequest(c.Request.Context(), id, req)
	if err != nil {
		writeRefundError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// Get handles GET /api/v1/admin/refunds/:id.
func (h *AdminRefundHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid refund request id")
		return
	}

	resp, err := h.refundService.GetRefundRequest(c.Request.Context(), id)
	if err != nil {
		writeRefundError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Review handles PUT /api/v1/admin/refunds/:id.
func (h *AdminRefundHandler) Review(c *gin.Context) {
	admin, ok := adminID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid refund request id")
		return
	}

	var req model.ReviewRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.refundService.ReviewRefund(c.Request.Context(), id, admin, req)
	if err != nil {
		writeRefundError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Approve handles POST /api/v1/admin/refunds/:id/approve.
func (h *AdminRefundHandler) Approve(c *gin.Context) {
	admin, ok := adminID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid refund request id")
		return
	}

	resp, err := h.refundService.ApproveRefund(c.Request.Context(), id, admin)
	if err != nil {
		writeRefundError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Reject handles POST /api/v1/admin/refunds/:id/reject.
func (h *AdminRefundHandler) Reject(c *gin.Context) {
	admin, ok := adminID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid refund request id")
		return
	}

	var req model.RejectRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.refundService.RejectRefund(c.Request.Context(), id, admin, req)
	if err != nil {
		writeRefundError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// =====================================================
// SETTINGS
// =====================================================

// GetSettings handles GET /api/v1/admin/refund-settings.
func (h *AdminRefundHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		writeRefundError(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/v1/admin/refund-settings.
func (h *AdminRefundHandler) UpdateSettings(c *gin.Context) {
	var req model.UpdateRefundSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		writeRefundError(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

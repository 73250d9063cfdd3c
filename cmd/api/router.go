package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"motoshop-backend/internal/shared/middleware"
	"motoshop-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	// Stripe posts here with its own signature scheme, so the route stays
	// outside the versioned API and outside auth.
	router.POST("/webhooks/stripe", c.WebhookHandler.HandleStripeWebhook)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupRefundRoutes(v1, c)
		setupAdminRefundRoutes(v1, c)
	}

	return router
}

// ========================================
// PUBLIC REFUND ROUTES
// ========================================
func setupRefundRoutes(v1 *gin.RouterGroup, c *container.Container) {
	refunds := v1.Group("/refunds")
	{
		refunds.POST("", c.RefundHandler.Create)
		refunds.GET("/verify", c.RefundHandler.Verify)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRefundRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("/refunds", c.AdminRefundHandler.List)
		admin.POST("/refunds", c.AdminRefundHandler.Create)
		admin.GET("/refunds/:id", c.AdminRefundHandler.Get)
		admin.PUT("/refunds/:id", c.AdminRefundHandler.Review)
		admin.POST("/refunds/:id/approve", c.AdminRefundHandler.Approve)
		admin.POST("/refunds/:id/reject", c.AdminRefundHandler.Reject)

		admin.GET("/refund-settings", c.AdminRefundHandler.GetSettings)
		admin.PUT("/refund-settings", c.AdminRefundHandler.UpdateSettings)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := "healthy"
		code := http.StatusOK

		dbStatus := "up"
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			dbStatus = "down"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		ctx.JSON(code, gin.H{
			"status":      status,
			"version":     c.Config.App.Version,
			"environment": c.Config.App.Environment,
			"database":    dbStatus,
		})
	}
}

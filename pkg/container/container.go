package container

import (
	"fmt"

	"motoshop-backend/internal/config"
	bookingrepo "motoshop-backend/internal/domains/booking/repository"
	notifjob "motoshop-backend/internal/domains/notification/job"
	notifrepo "motoshop-backend/internal/domains/notification/repository"
	notifservice "motoshop-backend/internal/domains/notification/service"
	"motoshop-backend/internal/domains/payment/gateway/stripe"
	paymenthandler "motoshop-backend/internal/domains/payment/handler"
	paymentjob "motoshop-backend/internal/domains/payment/job"
	paymentrepo "motoshop-backend/internal/domains/payment/repository"
	paymentservice "motoshop-backend/internal/domains/payment/service"
	refundhandler "motoshop-backend/internal/domains/refund/handler"
	refundjob "motoshop-backend/internal/domains/refund/job"
	refundrepo "motoshop-backend/internal/domains/refund/repository"
	refundservice "motoshop-backend/internal/domains/refund/service"
	"motoshop-backend/internal/infrastructure/cache"
	"motoshop-backend/internal/infrastructure/database"
	"motoshop-backend/internal/infrastructure/email"
	"motoshop-backend/internal/infrastructure/queue"
	pkgcache "motoshop-backend/pkg/cache"
	"motoshop-backend/pkg/jwt"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// DEPENDENCY CONTAINER
// =====================================================

// Container wires every layer of the application. Both the API server and
// the worker build one and pick the pieces they need.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB          *database.PostgresDB
	Cache       pkgcache.Cache
	JWTManager  *jwt.Manager
	QueueClient *queue.Client

	// Repositories
	BookingRepo  bookingrepo.BookingRepository
	PaymentRepo  paymentrepo.PaymentRepoInterface
	WebhookRepo  paymentrepo.WebhookRepoInterface
	RefundRepo   refundrepo.RefundRepoInterface
	SettingsRepo refundrepo.SettingsRepoInterface
	NotifRepo    notifrepo.NotificationRepoInterface

	// Services
	NotificationService notifservice.NotificationService
	SettingsService     refundservice.SettingsService
	RefundService       refundservice.RefundService
	WebhookService      paymentservice.WebhookService

	// HTTP handlers
	WebhookHandler     *paymenthandler.WebhookHandler
	RefundHandler      *refundhandler.RefundHandler
	AdminRefundHandler *refundhandler.AdminRefundHandler

	// Background job handlers
	SendNotificationHandler    *notifjob.SendNotificationHandler
	SendPendingHandler         *notifjob.SendPendingHandler
	ExpireUnverifiedHandler    *refundjob.ExpireUnverifiedHandler
	RetryFailedWebhooksHandler *paymentjob.RetryFailedWebhooksHandler
}

// NewContainer builds the full dependency graph from configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initServices()
	c.initHandlers()
	c.initJobHandlers()

	logger.Info().Msg("Dependency container initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	dbCfg := &database.DBConfig{
		Host:     c.Config.Database.Host,
		Port:     c.Config.Database.Port,
		User:     c.Config.Database.User,
		Password: c.Config.Database.Password,
		DBName:   c.Config.Database.Database,
		SSLMode:  c.Config.Database.SSLMode,
		MaxConns: int32(c.Config.Database.MaxConns),
		MinConns: int32(c.Config.Database.MinConns),
	}

	db, err := database.NewPostgresDB(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	c.DB = db

	redisCache, err := cache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err != nil {
		return fmt.Errorf("failed to init redis cache: %w", err)
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(c.Config.JWT.Secret)
	c.QueueClient = queue.NewClient(c.Config.Redis.Host, c.Config.Redis.Password)

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.BookingRepo = bookingrepo.NewBookingRepository(pool)
	c.PaymentRepo = paymentrepo.NewPaymentRepository(pool)
	c.WebhookRepo = paymentrepo.NewWebhookRepository(pool)
	c.RefundRepo = refundrepo.NewRefundRepository(pool)
	c.SettingsRepo = refundrepo.NewSettingsRepository(pool)
	c.NotifRepo = notifrepo.NewNotificationRepository(pool)
}

func (c *Container) initServices() {
	emailService := email.NewSMTPEmailService(c.Config.SMTP.Host, c.Config.SMTP.Port, c.Config.SMTP.From)
	emailProvider := email.NewNotificationEmailProvider(emailService)

	c.NotificationService = notifservice.NewNotificationService(c.NotifRepo, emailProvider, c.QueueClient)
	c.SettingsService = refundservice.NewSettingsService(c.SettingsRepo, c.Cache)

	stripeClient := stripe.NewClient(c.Config.Stripe.SecretKey, c.Config.Stripe.WebhookSecret)

	c.RefundService = refundservice.NewRefundService(
		c.RefundRepo,
		c.BookingRepo,
		c.PaymentRepo,
		stripeClient,
		c.NotificationService,
		c.Config.App.BaseURL,
		c.Config.SMTP.AdminAlertEmail,
	)

	txManager := paymentrepo.NewPostgresTransactionManager(c.DB.Pool)
	c.WebhookService = paymentservice.NewWebhookService(
		stripeClient,
		txManager,
		c.PaymentRepo,
		c.WebhookRepo,
		c.BookingRepo,
		c.RefundRepo,
		c.SettingsRepo,
		c.NotificationService,
	)
}

func (c *Container) initHandlers() {
	c.WebhookHandler = paymenthandler.NewWebhookHandler(c.WebhookService)
	c.RefundHandler = refundhandler.NewRefundHandler(c.RefundService)
	c.AdminRefundHandler = refundhandler.NewAdminRefundHandler(c.RefundService, c.SettingsService)
}

func (c *Container) initJobHandlers() {
	c.SendNotificationHandler = notifjob.NewSendNotificationHandler(c.NotificationService)
	c.SendPendingHandler = notifjob.NewSendPendingHandler(c.NotificationService, c.Config.Jobs)
	c.ExpireUnverifiedHandler = refundjob.NewExpireUnverifiedHandler(c.RefundService, c.Config.Jobs)
	c.RetryFailedWebhooksHandler = paymentjob.NewRetryFailedWebhooksHandler(c.WebhookService, c.Config.Jobs)
}

// Cleanup releases infrastructure resources in reverse init order.
func (c *Container) Cleanup() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close queue client")
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close redis cache")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	logger.Info().Msg("Container cleanup completed")
}

package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/skyyield/skyyield/config"
	"github.com/skyyield/skyyield/internal/database"
	"github.com/skyyield/skyyield/internal/domain"
	httpHandler "github.com/skyyield/skyyield/internal/http"
	"github.com/skyyield/skyyield/internal/http/middleware"
	"github.com/skyyield/skyyield/internal/repository"
	"github.com/skyyield/skyyield/internal/service"
	"github.com/skyyield/skyyield/pkg/logger"
	"github.com/skyyield/skyyield/pkg/mailer"
	"github.com/skyyield/skyyield/pkg/ratelimiter"
)

// App encapsulates the application dependencies and configuration
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB
	mailer mailer.Mailer
	mux    *http.ServeMux
	server *http.Server

	loginLimiter *ratelimiter.Limiter

	// Repositories
	partnerRepo         domain.PartnerRepository
	prospectRepo        domain.ProspectRepository
	venueRepo           domain.VenueRepository
	deviceRepo          domain.DeviceRepository
	purchaseRequestRepo domain.PurchaseRequestRepository
	productRepo         domain.ProductRepository
	paymentRepo         domain.PaymentRepository
	commissionRepo      domain.CommissionRepository
	blogRepo            domain.BlogRepository
	userRepo            domain.UserRepository
	activityRepo        domain.ActivityLogRepository
	webhookEventRepo    domain.WebhookEventRepository

	// Services
	authService            *service.AuthService
	userService            *service.UserService
	partnerService         *service.PartnerService
	prospectService        *service.ProspectService
	venueService           *service.VenueService
	deviceService          *service.DeviceService
	purchaseRequestService *service.PurchaseRequestService
	productService         *service.ProductService
	paymentService         *service.PaymentService
	commissionService      *service.CommissionService
	blogService            *service.BlogService
	pipelineService        *service.PipelineService
	calendlyService        *service.CalendlyService
	esignService           *service.ESignService
	tipaltiService         *service.TipaltiService
	stripeClient           *service.StripeClient
	scheduler              *service.Scheduler
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config) *App {
	return &App{
		config: cfg,
		logger: logger.NewLogger(cfg.LogLevel),
		mux:    http.NewServeMux(),
	}
}

// InitDB connects to PostgreSQL and ensures the schema exists
func (a *App) InitDB() error {
	db, err := database.ConnectDB(&a.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.InitializeDatabase(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	a.db = db
	return nil
}

// InitMailer configures the SMTP mailer. Without an SMTP host the mailer
// runs in test mode and logs instead of sending.
func (a *App) InitMailer() error {
	mailerConfig := &mailer.Config{
		SMTPHost:     a.config.SMTP.Host,
		SMTPPort:     a.config.SMTP.Port,
		SMTPUsername: a.config.SMTP.Username,
		SMTPPassword: a.config.SMTP.Password,
		FromEmail:    a.config.SMTP.FromEmail,
		FromName:     a.config.SMTP.FromName,
		PortalURL:    a.config.PortalURL,
	}

	if a.config.SMTP.Host == "" {
		a.logger.Warn("SMTP host not configured, emails will be logged only")
		a.mailer = mailer.NewTestSMTPMailer(mailerConfig)
		return nil
	}

	a.mailer = mailer.NewSMTPMailer(mailerConfig)
	return nil
}

// InitRepositories creates the repository layer
func (a *App) InitRepositories() error {
	a.partnerRepo = repository.NewPartnerRepository(a.db)
	a.prospectRepo = repository.NewProspectRepository(a.db)
	a.venueRepo = repository.NewVenueRepository(a.db)
	a.deviceRepo = repository.NewDeviceRepository(a.db)
	a.purchaseRequestRepo = repository.NewPurchaseRequestRepository(a.db)
	a.productRepo = repository.NewProductRepository(a.db)
	a.paymentRepo = repository.NewPaymentRepository(a.db)
	a.commissionRepo = repository.NewCommissionRepository(a.db)
	a.blogRepo = repository.NewBlogRepository(a.db)
	a.userRepo = repository.NewUserRepository(a.db)
	a.activityRepo = repository.NewActivityLogRepository(a.db)
	a.webhookEventRepo = repository.NewWebhookEventRepository(a.db)
	return nil
}

// InitServices creates the service layer
func (a *App) InitServices() error {
	a.authService = service.NewAuthService(a.userRepo, a.config.Security.JWTSecret, a.logger)
	a.userService = service.NewUserService(a.userRepo, a.webhookEventRepo, a.logger)
	a.partnerService = service.NewPartnerService(a.partnerRepo, a.activityRepo, a.logger)
	a.prospectService = service.NewProspectService(a.prospectRepo, a.partnerService, a.activityRepo, a.logger)
	a.venueService = service.NewVenueService(a.venueRepo, a.partnerRepo, a.activityRepo, a.logger)
	a.deviceService = service.NewDeviceService(a.deviceRepo, a.venueRepo, a.activityRepo, a.logger)
	a.purchaseRequestService = service.NewPurchaseRequestService(
		a.purchaseRequestRepo,
		a.partnerRepo,
		a.productRepo,
		a.deviceRepo,
		a.activityRepo,
		a.mailer,
		a.logger,
	)
	a.blogService = service.NewBlogService(a.blogRepo, a.logger)

	a.tipaltiService = service.NewTipaltiService(
		a.config.Webhooks.TipaltiSecret,
		a.config.Payouts.APIBaseURL,
		a.config.Payouts.APIKey,
		a.config.Payouts.PayerName,
		a.logger,
	)
	a.paymentService = service.NewPaymentService(a.paymentRepo, a.partnerRepo, a.tipaltiService, a.logger)
	a.commissionService = service.NewCommissionService(
		a.commissionRepo,
		a.partnerRepo,
		a.deviceRepo,
		a.config.Payouts.CommissionCentsPerDevice,
		a.logger,
	)

	a.stripeClient = service.NewStripeClient(a.config.Store.StripeAPIKey, a.config.Webhooks.StripeSecret)
	a.productService = service.NewProductService(a.productRepo, a.purchaseRequestService, a.stripeClient, a.webhookEventRepo, a.logger)

	a.pipelineService = service.NewPipelineService(
		a.partnerRepo,
		a.activityRepo,
		a.webhookEventRepo,
		a.mailer,
		a.config.OpsEmail,
		a.logger,
	)
	if a.config.Webhooks.CalendlySecret != "" {
		a.calendlyService = service.NewCalendlyService(a.config.Webhooks.CalendlySecret, a.logger)
	}
	if a.config.Webhooks.ESignToken != "" {
		a.esignService = service.NewESignService(a.config.Webhooks.ESignToken, a.logger)
	}

	a.scheduler = service.NewScheduler(a.commissionService, a.paymentService, a.logger)
	return nil
}

// InitHandlers registers the HTTP routes. Webhook providers without
// verification material configured are not registered.
func (a *App) InitHandlers() error {
	// lock out an address after 10 invalid tokens in 5 minutes
	a.loginLimiter = ratelimiter.New(10, 5*time.Minute)
	authMiddleware := middleware.NewAuthMiddleware(a.authService, a.loginLimiter, a.logger)
	secureCookies := !a.config.IsDevelopment()

	partnerHandler := httpHandler.NewPartnerHandler(a.partnerService, authMiddleware, a.logger)
	prospectHandler := httpHandler.NewProspectHandler(a.prospectService, authMiddleware, a.logger)
	venueHandler := httpHandler.NewVenueHandler(a.venueService, authMiddleware, a.logger)
	deviceHandler := httpHandler.NewDeviceHandler(a.deviceService, authMiddleware, a.logger)
	purchaseRequestHandler := httpHandler.NewPurchaseRequestHandler(a.purchaseRequestService, authMiddleware, a.logger)
	paymentHandler := httpHandler.NewPaymentHandler(a.paymentService, authMiddleware, a.logger)
	commissionHandler := httpHandler.NewCommissionHandler(a.commissionService, authMiddleware, a.logger)
	blogHandler := httpHandler.NewBlogHandler(a.blogService, authMiddleware, a.logger)
	productHandler := httpHandler.NewProductHandler(a.productService, authMiddleware, a.logger)
	userHandler := httpHandler.NewUserHandler(a.authService, a.partnerService, authMiddleware, secureCookies, a.logger)
	webhookEventHandler := httpHandler.NewWebhookEventHandler(a.pipelineService, authMiddleware, a.logger)
	rootHandler := httpHandler.NewRootHandler(a.config.Version, a.config.Environment, a.logger)

	var tipaltiWebhook *service.TipaltiService
	if a.config.Webhooks.TipaltiSecret != "" {
		tipaltiWebhook = a.tipaltiService
	}
	var stripeWebhook *service.StripeClient
	if a.config.Webhooks.StripeSecret != "" {
		stripeWebhook = a.stripeClient
	}

	webhookHandler, err := httpHandler.NewWebhookHandler(
		a.pipelineService,
		a.calendlyService,
		a.esignService,
		tipaltiWebhook,
		a.paymentService,
		stripeWebhook,
		a.productService,
		a.userService,
		a.config.Webhooks.ClerkSecret,
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook handler: %w", err)
	}

	partnerHandler.RegisterRoutes(a.mux)
	prospectHandler.RegisterRoutes(a.mux)
	venueHandler.RegisterRoutes(a.mux)
	deviceHandler.RegisterRoutes(a.mux)
	purchaseRequestHandler.RegisterRoutes(a.mux)
	paymentHandler.RegisterRoutes(a.mux)
	commissionHandler.RegisterRoutes(a.mux)
	blogHandler.RegisterRoutes(a.mux)
	productHandler.RegisterRoutes(a.mux)
	userHandler.RegisterRoutes(a.mux)
	webhookEventHandler.RegisterRoutes(a.mux)
	webhookHandler.RegisterRoutes(a.mux)
	rootHandler.RegisterRoutes(a.mux)

	return nil
}

// Initialize runs all initialization steps in order
func (a *App) Initialize() error {
	if err := a.InitDB(); err != nil {
		return err
	}
	if err := a.InitMailer(); err != nil {
		return err
	}
	if err := a.InitRepositories(); err != nil {
		return err
	}
	if err := a.InitServices(); err != nil {
		return err
	}
	return a.InitHandlers()
}

// Start runs the HTTP server and the recurring jobs. It blocks until the
// server stops.
func (a *App) Start() error {
	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:              addr,
		Handler:           middleware.CORSMiddleware(a.mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.WithField("address", addr).Info("starting server")
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the scheduler, drains in-flight requests and closes the
// database
func (a *App) Shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.blogService != nil {
		a.blogService.Stop()
	}

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	a.logger.Info("server stopped")
	return nil
}

// GetMux exposes the router for tests
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

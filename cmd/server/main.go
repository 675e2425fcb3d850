package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/printpower/storefront/internal"
	"github.com/printpower/storefront/internal/billing"
	"github.com/printpower/storefront/internal/email"
	"github.com/printpower/storefront/internal/handler/admin"
	"github.com/printpower/storefront/internal/handler/storefront"
	"github.com/printpower/storefront/internal/handler/webhook"
	"github.com/printpower/storefront/internal/middleware"
	"github.com/printpower/storefront/internal/postgres"
	"github.com/printpower/storefront/internal/pricing"
	"github.com/printpower/storefront/internal/router"
	"github.com/printpower/storefront/internal/routes"
	"github.com/printpower/storefront/internal/service"
	"github.com/printpower/storefront/internal/shipping"
	"github.com/printpower/storefront/internal/tax"
	"github.com/printpower/storefront/internal/telemetry"
	"github.com/printpower/storefront/internal/vendorapi"
	"github.com/printpower/storefront/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry error tracking
	sentryFlush, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer sentryFlush()

	// Initialize business metrics
	telemetry.InitBusinessMetrics("ppp")

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	// Payment providers: test and live run side by side, a database
	// setting selects which one new sessions use.
	providers := make(map[string]billing.Provider)
	if cfg.Stripe.TestSecretKey != "" {
		provider, err := billing.NewStripeProvider(billing.StripeConfig{
			APIKey:        cfg.Stripe.TestSecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Stripe test provider: %w", err)
		}
		providers["test"] = provider
	}
	if cfg.Stripe.LiveSecretKey != "" {
		provider, err := billing.NewStripeProvider(billing.StripeConfig{
			APIKey:        cfg.Stripe.LiveSecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Stripe live provider: %w", err)
		}
		providers["live"] = provider
	}
	if len(providers) == 0 {
		if cfg.Env == "prod" {
			return errors.New("no Stripe credentials configured")
		}
		logger.Warn("No Stripe credentials configured, using mock payment provider")
		providers["test"] = billing.NewMockProvider()
	}

	// The webhook endpoint verifies against the default mode's provider;
	// signature verification only needs the shared webhook secret.
	webhookProvider := providers[cfg.Stripe.DefaultPaymentMode]
	if webhookProvider == nil {
		for _, p := range providers {
			webhookProvider = p
			break
		}
	}

	// Print vendor adapters
	registry := vendorapi.NewRegistry(
		vendorapi.NewSinaliteAdapter(vendorapi.SinaliteConfig{
			Mode:             cfg.Vendors.SinaliteMode,
			TestClientID:     cfg.Vendors.SinaliteTestClientID,
			TestClientSecret: cfg.Vendors.SinaliteTestClientSecret,
			LiveClientID:     cfg.Vendors.SinaliteLiveClientID,
			LiveClientSecret: cfg.Vendors.SinaliteLiveClientSecret,
		}, logger),
		vendorapi.NewScalablePressAdapter(cfg.Vendors.ScalablePressAPIKey, logger),
		vendorapi.NewPSRestfulAdapter(cfg.Vendors.PSRestfulAPIKey, logger),
	)

	// Email
	var sender email.Sender
	switch {
	case cfg.Email.PostmarkToken != "":
		sender = email.NewPostmarkSender(cfg.Email.PostmarkToken)
	case cfg.Email.Host != "":
		smtpSender := email.NewSMTPSender(cfg.Email.Host, int(cfg.Email.Port), cfg.Email.Username, cfg.Email.Password, cfg.Email.From, cfg.Email.FromName)
		if err := smtpSender.TestConnection(ctx); err != nil {
			logger.Warn("SMTP connection check failed, emails may not be delivered", "error", err)
		}
		sender = smtpSender
	default:
		logger.Warn("No email transport configured, emails will not be sent")
		sender = email.NewMockSender()
	}
	emailService := email.NewService(sender, cfg.Email.From, cfg.Email.FromName)

	// Services
	cartValidator := service.NewCartValidator(store)
	checkoutService := service.NewCheckout(
		cartValidator,
		pricing.NewEngine(""),
		store,
		store,
		store,
		shipping.NewTierCalculator(nil, 900),
		tax.NewNoTaxCalculator(),
		providers,
		service.CheckoutConfig{
			BaseURL:       cfg.BaseURL,
			Currency:      "usd",
			DefaultVendor: cfg.Fulfillment.DefaultVendor,
		},
		logger,
	)
	orderService := service.NewOrders(store)
	dispatcher := service.NewDispatcher(
		cfg.Fulfillment.Mode,
		registry,
		store,
		emailService,
		cfg.Fulfillment.VendorEmails,
		cfg.Fulfillment.DefaultVendor,
		logger,
	)
	paymentService := service.NewPayments(store, store, store, store, emailService, dispatcher, logger)

	// Handlers
	checkoutHandler := storefront.NewCheckoutHandler(checkoutService, logger)
	orderHandler := storefront.NewOrderHandler(orderService)
	trackingHandler := admin.NewTrackingHandler(orderService, dispatcher, logger)
	stripeWebhookHandler := webhook.NewStripeHandler(webhookProvider, paymentService, webhook.StripeWebhookConfig{
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}, logger)

	// Middleware
	metrics := middleware.NewMetrics("ppp")

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTSMaxAge = 0
	}

	checkoutLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window,
	})
	defer checkoutLimiter.Stop()

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithClientIP(),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(middleware.SmallMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		telemetry.SentryMiddleware(),
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
	)

	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		CheckoutHandler:   checkoutHandler,
		OrderHandler:      orderHandler,
		CheckoutRateLimit: checkoutLimiter.Middleware,
	})
	routes.RegisterAdminRoutes(r, routes.AdminDeps{
		TrackingHandler: trackingHandler,
	})
	routes.RegisterWebhookRoutes(r, routes.WebhookDeps{
		StripeHandler: stripeWebhookHandler.HandleWebhook,
	})
	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		MetricsHandler: metrics.Handler(),
		HealthCheck: func(req *http.Request) error {
			pingCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		},
	})

	// Background tracking poller
	if cfg.Worker.Enabled {
		poller := worker.NewTrackingPoller(store, dispatcher, worker.Config{
			PollInterval: cfg.Worker.PollInterval,
			BatchSize:    cfg.Worker.BatchSize,
		}, logger)
		go func() {
			if err := poller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("tracking poller stopped", "error", err)
			}
		}()
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

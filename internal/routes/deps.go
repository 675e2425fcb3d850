package routes

import (
	"net/http"

	"github.com/printpower/storefront/internal/handler/admin"
	"github.com/printpower/storefront/internal/handler/storefront"
	"github.com/printpower/storefront/internal/router"
)

// StorefrontDeps contains dependencies for customer-facing API routes
type StorefrontDeps struct {
	// Checkout
	CheckoutHandler *storefront.CheckoutHandler

	// Orders (read-only lookups for confirmation pages)
	OrderHandler *storefront.OrderHandler

	// CheckoutRateLimit guards session creation. Required.
	CheckoutRateLimit router.Middleware
}

// AdminDeps contains dependencies for admin routes
type AdminDeps struct {
	TrackingHandler *admin.TrackingHandler
}

// WebhookDeps contains dependencies for webhook routes
type WebhookDeps struct {
	StripeHandler http.HandlerFunc
}

// OpsDeps contains dependencies for operational endpoints
type OpsDeps struct {
	// MetricsHandler serves the Prometheus scrape endpoint
	MetricsHandler http.Handler

	// HealthCheck reports readiness (e.g., database ping). Optional;
	// when nil the health endpoint always reports ok.
	HealthCheck func(r *http.Request) error
}

package routes

import (
	"github.com/printpower/storefront/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing API routes.
// The frontend is a separate static site; these endpoints serve it JSON.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Checkout session creation is the only write path exposed to
	// anonymous clients, so it carries its own rate limit.
	r.Post("/api/checkout/session", deps.CheckoutHandler.CreateSession, deps.CheckoutRateLimit)

	// Order lookups for the confirmation page
	r.Get("/api/orders/{id}", deps.OrderHandler.GetByID)
	r.Get("/api/orders/number/{number}", deps.OrderHandler.GetByNumber)
}

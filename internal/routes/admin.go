package routes

import (
	"github.com/printpower/storefront/internal/router"
)

// RegisterAdminRoutes registers operator-facing routes.
//
// These endpoints are expected to be protected at the network layer
// (reverse proxy allowlist); the application carries no auth layer.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	r.Post("/api/admin/orders/{id}/refresh-tracking", deps.TrackingHandler.RefreshTracking)
}

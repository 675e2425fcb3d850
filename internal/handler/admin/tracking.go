package admin

import (
	"log/slog"
	"net/http"

	"github.com/printpower/storefront/internal/domain"
	"github.com/printpower/storefront/internal/handler"
	"github.com/printpower/storefront/internal/telemetry"
)

// TrackingHandler exposes manual tracking refresh for operators.
type TrackingHandler struct {
	orders     domain.OrderService
	dispatcher domain.FulfillmentDispatcher
	logger     *slog.Logger
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(orders domain.OrderService, dispatcher domain.FulfillmentDispatcher, logger *slog.Logger) *TrackingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackingHandler{orders: orders, dispatcher: dispatcher, logger: logger}
}

// RefreshTracking handles POST /api/admin/orders/{id}/refresh-tracking
func (h *TrackingHandler) RefreshTracking(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.dispatcher.RefreshTracking(r.Context(), order); err != nil {
		h.logger.Error("tracking refresh failed",
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()))
		if telemetry.Business != nil {
			telemetry.Business.TrackingRefreshes.WithLabelValues("error").Inc()
		}
		handler.ErrorResponse(w, r, domain.Internal(err, "admin.refresh_tracking", "tracking refresh failed"))
		return
	}

	outcome := "empty"
	if order.TrackingNumber != "" {
		outcome = "updated"
	}
	if telemetry.Business != nil {
		telemetry.Business.TrackingRefreshes.WithLabelValues(outcome).Inc()
	}

	handler.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"orderNumber":    order.OrderNumber,
		"trackingNumber": order.TrackingNumber,
		"trackingUrl":    order.TrackingURL,
		"carrier":        order.TrackingCarrier,
		"shippingStatus": order.ShippingStatus,
	})
}

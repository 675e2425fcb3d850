package storefront

import (
	"net/http"
	"time"

	"github.com/printpower/storefront/internal/domain"
	"github.com/printpower/storefront/internal/handler"
)

// OrderHandler serves order lookups for the confirmation and status pages.
type OrderHandler struct {
	orders domain.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders domain.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GetByID handles GET /api/orders/{id}
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSONResponse(w, http.StatusOK, orderView(order))
}

// GetByNumber handles GET /api/orders/number/{number}
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrderByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSONResponse(w, http.StatusOK, orderView(order))
}

// orderResponse is the public shape of an order. Internal payment references
// and vendor diagnostics stay out of it.
type orderResponse struct {
	ID          string             `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	Status      string             `json:"status"`
	Items       []domain.OrderItem `json:"items"`

	SubtotalCents int64  `json:"subtotalCents"`
	ShippingCents int64  `json:"shippingCents"`
	TaxCents      int64  `json:"taxCents"`
	DonationCents int64  `json:"donationCents"`
	TotalCents    int64  `json:"totalCents"`
	Currency      string `json:"currency"`

	NonprofitName string `json:"nonprofitName,omitempty"`
	NonprofitEIN  string `json:"nonprofitEin,omitempty"`

	TrackingNumber  string     `json:"trackingNumber,omitempty"`
	TrackingURL     string     `json:"trackingUrl,omitempty"`
	TrackingCarrier string     `json:"trackingCarrier,omitempty"`
	ShippingStatus  string     `json:"shippingStatus,omitempty"`
	ShippedAt       *time.Time `json:"shippedAt,omitempty"`

	PaidAt    *time.Time `json:"paidAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func orderView(order *domain.Order) orderResponse {
	return orderResponse{
		ID:              order.ID.String(),
		OrderNumber:     order.OrderNumber,
		Status:          string(order.Status),
		Items:           order.Items,
		SubtotalCents:   order.SubtotalCents,
		ShippingCents:   order.ShippingCents,
		TaxCents:        order.TaxCents,
		DonationCents:   order.DonationCents,
		TotalCents:      order.TotalCents,
		Currency:        order.Currency,
		NonprofitName:   order.NonprofitName,
		NonprofitEIN:    order.NonprofitEIN,
		TrackingNumber:  order.TrackingNumber,
		TrackingURL:     order.TrackingURL,
		TrackingCarrier: order.TrackingCarrier,
		ShippingStatus:  order.ShippingStatus,
		ShippedAt:       order.ShippedAt,
		PaidAt:          order.PaidAt,
		CreatedAt:       order.CreatedAt,
	}
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks the payment lifecycle of an order.
type OrderStatus string

const (
	// OrderStatusCreated is a provisional order awaiting payment confirmation.
	// Orders may remain in this state forever if checkout is abandoned.
	OrderStatusCreated OrderStatus = "created"

	// OrderStatusCompleted means payment was confirmed by the provider.
	OrderStatusCompleted OrderStatus = "completed"
)

// VendorStatus tracks the fulfillment outcome recorded by the dispatcher.
// It is independent of the payment lifecycle and never blocks completion.
type VendorStatus string

const (
	VendorStatusSubmitted     VendorStatus = "submitted"
	VendorStatusPendingManual VendorStatus = "pending_manual"
	VendorStatusEmailed       VendorStatus = "emailed_vendor"
	VendorStatusError         VendorStatus = "error"
	VendorStatusEmailError    VendorStatus = "email_error"
)

// OrderItem is a validated, server-priced line item persisted on an order.
type OrderItem struct {
	ProductID         uuid.UUID         `json:"product_id"`
	ProductName       string            `json:"product_name"`
	Vendor            string            `json:"vendor"`
	Category          string            `json:"category"`
	Quantity          int               `json:"quantity"`
	UnitPriceCents    int64             `json:"final_price_per_unit_cents"`
	LineSubtotalCents int64             `json:"line_subtotal_cents"`
	MarkupCents       int64             `json:"markup_cents"`
	DonationCents     int64             `json:"donation_per_unit_cents"`
	Configuration     map[string]string `json:"configuration,omitempty"`
	ArtworkURL        string            `json:"artwork_url,omitempty"`
}

// Order is the central mutable record of the pipeline. It is created
// provisionally before the payment session exists and finalized by the
// payment webhook.
type Order struct {
	ID          uuid.UUID
	OrderNumber string
	Status      OrderStatus

	SessionID       string
	PaymentIntentID string
	PaymentMode     string // "test" or "live"
	ReceiptURL      string
	CustomerEmail   string

	Items         []OrderItem
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	DonationCents int64
	TotalCents    int64
	Currency      string

	NonprofitID   *uuid.UUID
	NonprofitName string
	NonprofitEIN  string
	CauseID       *uuid.UUID

	// Single vendor per order, inferred from the first item when unset.
	VendorKey  string
	VendorName string

	VendorStatus  VendorStatus
	VendorMessage string
	VendorOrderID string

	TrackingNumber  string
	TrackingURL     string
	TrackingCarrier string
	ShippingStatus  string
	ShippedAt       *time.Time

	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FinalizeOrderParams carries the session fields the webhook applies when
// transitioning an order to completed.
type FinalizeOrderParams struct {
	OrderID         uuid.UUID
	SessionID       string
	PaymentIntentID string
	ReceiptURL      string
	CustomerEmail   string
	AmountTotal     int64
	DonationCents   int64
	NonprofitID     *uuid.UUID
	NonprofitName   string
	NonprofitEIN    string
	CauseID         *uuid.UUID
	PaidAt          time.Time
}

// TrackingUpdate carries optional shipping fields merged onto an order after
// polling a vendor adapter. Empty fields are left untouched.
type TrackingUpdate struct {
	TrackingNumber  string
	TrackingURL     string
	TrackingCarrier string
	ShippingStatus  string
	ShippedAt       *time.Time
}

// OrderStore persists orders.
type OrderStore interface {
	// CreateOrder inserts a provisional order in state created.
	CreateOrder(ctx context.Context, order *Order) error

	// UpdateOrderSession replaces the placeholder session id and tax amount
	// after the payment session is created.
	UpdateOrderSession(ctx context.Context, orderID uuid.UUID, sessionID string, taxCents int64) error

	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)

	// FinalizeOrder transitions an order to completed with payment details.
	FinalizeOrder(ctx context.Context, params FinalizeOrderParams) (*Order, error)

	// InsertCompletedOrder creates a completed order directly from session
	// data. Kept for events whose metadata predates provisional orders.
	InsertCompletedOrder(ctx context.Context, order *Order) error

	// UpdateVendorStatus records the fulfillment outcome for an order.
	UpdateVendorStatus(ctx context.Context, orderID uuid.UUID, status VendorStatus, message, vendorOrderID string) error

	// UpdateTracking merges non-empty tracking fields onto an order.
	UpdateTracking(ctx context.Context, orderID uuid.UUID, update TrackingUpdate) error

	// NextOrderNumber returns the next human-readable order number from the
	// database-side sequence.
	NextOrderNumber(ctx context.Context) (string, error)

	// ListOrdersByVendorStatus returns orders in a given fulfillment state,
	// newest first, up to limit.
	ListOrdersByVendorStatus(ctx context.Context, status VendorStatus, limit int) ([]Order, error)
}

// OrderService exposes order lookups to handlers.
type OrderService interface {
	GetOrder(ctx context.Context, id string) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
}

// FulfillmentDispatcher routes a finalized order to exactly one fulfillment
// strategy and records the outcome on the order. Dispatch never returns an
// error: fulfillment failures must not fail the payment webhook.
type FulfillmentDispatcher interface {
	Dispatch(ctx context.Context, order *Order)

	// RefreshTracking polls the order's vendor adapter for tracking info and
	// merges any returned fields onto the order. A vendor without tracking
	// support, or an order without a vendor order id, is a silent no-op.
	RefreshTracking(ctx context.Context, order *Order) error
}

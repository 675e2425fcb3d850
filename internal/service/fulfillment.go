package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/printpower/storefront/internal/domain"
	"github.com/printpower/storefront/internal/email"
	"github.com/printpower/storefront/internal/telemetry"
	"github.com/printpower/storefront/internal/vendorapi"
)

// Fulfillment modes the dispatcher routes between. Mode is fixed at
// construction from configuration; there is no per-order override.
const (
	ModeAutoAPI      = "AUTO_API"
	ModeEmailVendor  = "EMAIL_VENDOR"
	ModeManualExport = "MANUAL_EXPORT"
)

// Dispatcher routes a finalized order to exactly one fulfillment strategy
// and records the outcome on the order. Fulfillment is best-effort: nothing
// here ever propagates an error to the payment webhook.
type Dispatcher struct {
	mode          string
	registry      *vendorapi.Registry
	orders        domain.OrderStore
	emails        *email.Service
	vendorEmails  map[string]string // vendor key -> notification inbox
	defaultVendor string
	logger        *slog.Logger
}

// Compile-time check that Dispatcher implements domain.FulfillmentDispatcher.
var _ domain.FulfillmentDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a fulfillment dispatcher.
func NewDispatcher(
	mode string,
	registry *vendorapi.Registry,
	orders domain.OrderStore,
	emails *email.Service,
	vendorEmails map[string]string,
	defaultVendor string,
	logger *slog.Logger,
) *Dispatcher {
	if defaultVendor == "" {
		defaultVendor = domain.VendorSinalite
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		mode:          mode,
		registry:      registry,
		orders:        orders,
		emails:        emails,
		vendorEmails:  vendorEmails,
		defaultVendor: defaultVendor,
		logger:        logger,
	}
}

// Dispatch routes the order through the configured fulfillment mode. Every
// outcome, success or failure, is recorded as the order's vendor status.
func (d *Dispatcher) Dispatch(ctx context.Context, order *domain.Order) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("fulfillment dispatch panicked",
				slog.String("order_number", order.OrderNumber),
				slog.Any("panic", r))
			d.recordStatus(ctx, order, domain.VendorStatusError, fmt.Sprintf("dispatch failure: %v", r), "")
		}
	}()

	vendorKey := d.orderVendor(order)

	switch d.mode {
	case ModeManualExport:
		d.recordStatus(ctx, order, domain.VendorStatusPendingManual, "queued for manual export", "")
	case ModeEmailVendor:
		d.dispatchEmail(ctx, order, vendorKey)
	case ModeAutoAPI:
		d.dispatchAPI(ctx, order, vendorKey)
	default:
		d.logger.Warn("unrecognized fulfillment mode, falling back to vendor API",
			slog.String("mode", d.mode),
			slog.String("order_number", order.OrderNumber))
		d.dispatchAPI(ctx, order, vendorKey)
	}

	if telemetry.Business != nil {
		telemetry.Business.FulfillmentDispatched.WithLabelValues(d.mode, string(order.VendorStatus)).Inc()
	}
}

func (d *Dispatcher) dispatchAPI(ctx context.Context, order *domain.Order, vendorKey string) {
	adapter, err := d.registry.Get(vendorKey)
	if err != nil {
		d.recordStatus(ctx, order, domain.VendorStatusError,
			fmt.Sprintf("no adapter for vendor %q", vendorKey), "")
		return
	}

	start := time.Now()
	result, err := adapter.SubmitOrder(ctx, order)
	if telemetry.Business != nil {
		telemetry.Business.VendorAPILatency.WithLabelValues(vendorKey, "submit_order").Observe(time.Since(start).Seconds())
	}
	if err != nil {
		d.logger.Error("vendor order submission failed",
			slog.String("order_number", order.OrderNumber),
			slog.String("vendor", vendorKey),
			slog.String("error", err.Error()))
		d.recordStatus(ctx, order, domain.VendorStatusError, err.Error(), "")
		return
	}

	status := domain.VendorStatus(result.Status)
	if status == "" {
		status = domain.VendorStatusSubmitted
	}
	order.VendorName = adapter.Name()
	d.recordStatus(ctx, order, status, "", result.VendorOrderID)
}

func (d *Dispatcher) dispatchEmail(ctx context.Context, order *domain.Order, vendorKey string) {
	to, ok := d.vendorEmails[vendorKey]
	if !ok || to == "" {
		d.recordStatus(ctx, order, domain.VendorStatusEmailError,
			fmt.Sprintf("no notification address configured for vendor %q", vendorKey), "")
		return
	}

	vendorName := vendorKey
	if adapter, err := d.registry.Get(vendorKey); err == nil {
		vendorName = adapter.Name()
	}

	notification := email.VendorNotificationEmail{
		OrderNumber:   order.OrderNumber,
		VendorName:    vendorName,
		CustomerEmail: order.CustomerEmail,
		OrderDate:     order.CreatedAt,
		Items:         emailItems(order),
		TotalCents:    order.TotalCents,
	}
	if err := d.emails.SendVendorNotification(ctx, to, notification); err != nil {
		d.logger.Error("vendor notification email failed",
			slog.String("order_number", order.OrderNumber),
			slog.String("vendor", vendorKey),
			slog.String("error", err.Error()))
		d.recordStatus(ctx, order, domain.VendorStatusEmailError, err.Error(), "")
		return
	}
	d.recordStatus(ctx, order, domain.VendorStatusEmailed, "", "")
}

// RefreshTracking polls the order's adapter for tracking info and merges any
// returned fields onto the order. Adapters without tracking support, and
// orders without a vendor order id, are silent no-ops.
func (d *Dispatcher) RefreshTracking(ctx context.Context, order *domain.Order) error {
	if order.VendorOrderID == "" {
		return nil
	}
	adapter, err := d.registry.Get(d.orderVendor(order))
	if err != nil {
		return nil
	}
	tracker, ok := adapter.(vendorapi.TrackingProvider)
	if !ok {
		return nil
	}

	start := time.Now()
	info, err := tracker.GetTrackingInfo(ctx, order)
	if telemetry.Business != nil {
		telemetry.Business.VendorAPILatency.WithLabelValues(adapter.Key(), "get_tracking").Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return fmt.Errorf("tracking lookup for order %s: %w", order.OrderNumber, err)
	}
	if info == nil {
		return nil
	}

	update := domain.TrackingUpdate{
		TrackingNumber:  info.TrackingNumber,
		TrackingURL:     info.TrackingURL,
		TrackingCarrier: info.Carrier,
		ShippingStatus:  info.Status,
		ShippedAt:       info.ShippedAt,
	}
	if err := d.orders.UpdateTracking(ctx, order.ID, update); err != nil {
		return err
	}

	order.TrackingNumber = info.TrackingNumber
	order.TrackingURL = info.TrackingURL
	order.TrackingCarrier = info.Carrier
	order.ShippingStatus = info.Status
	if info.ShippedAt != nil {
		order.ShippedAt = info.ShippedAt
	}
	return nil
}

// orderVendor resolves the vendor key: explicit order field, else the first
// line item's vendor, else the configured default.
func (d *Dispatcher) orderVendor(order *domain.Order) string {
	if order.VendorKey != "" {
		return order.VendorKey
	}
	for _, item := range order.Items {
		if item.Vendor != "" {
			return item.Vendor
		}
	}
	return d.defaultVendor
}

// recordStatus writes the fulfillment outcome onto both the database row and
// the in-memory order. A persistence failure here is logged and swallowed.
func (d *Dispatcher) recordStatus(ctx context.Context, order *domain.Order, status domain.VendorStatus, message, vendorOrderID string) {
	order.VendorStatus = status
	order.VendorMessage = message
	if vendorOrderID != "" {
		order.VendorOrderID = vendorOrderID
	}

	if order.ID == uuid.Nil {
		return
	}
	if err := d.orders.UpdateVendorStatus(ctx, order.ID, status, message, vendorOrderID); err != nil {
		d.logger.Error("failed to record vendor status",
			slog.String("order_number", order.OrderNumber),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
	}
}

func emailItems(order *domain.Order) []email.OrderItem {
	items := make([]email.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, email.OrderItem{
			ProductName:   item.ProductName,
			Configuration: describeConfiguration(item.Configuration),
			Quantity:      item.Quantity,
			PriceCents:    item.UnitPriceCents,
			TotalCents:    item.LineSubtotalCents,
			ArtworkURL:    item.ArtworkURL,
		})
	}
	return items
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/printpower/storefront/internal/billing"
	"github.com/printpower/storefront/internal/domain"
	"github.com/printpower/storefront/internal/pricing"
	"github.com/printpower/storefront/internal/shipping"
	"github.com/printpower/storefront/internal/tax"
	"github.com/printpower/storefront/internal/telemetry"
)

// Session id placeholder written on provisional orders before the payment
// session exists. The webhook never matches on it.
const sessionPlaceholder = "pending"

// paymentModeKey is the settings table key selecting test or live credentials.
const paymentModeKey = "payment_mode"

// CheckoutConfig carries the fixed parameters of session creation.
type CheckoutConfig struct {
	// BaseURL is the public storefront origin for redirect URLs.
	BaseURL string

	// Currency for all sessions (ISO 4217 lowercase).
	Currency string

	// DefaultVendor is attributed to orders whose items carry no vendor.
	DefaultVendor string
}

// Checkout orchestrates session creation: validate the cart, price every
// line against catalog records, persist a provisional order, and create the
// hosted payment session.
type Checkout struct {
	validator *CartValidator
	engine    *pricing.Engine
	settings  domain.SettingsStore
	donations domain.DonationStore
	orders    domain.OrderStore
	shipping  shipping.Calculator
	tax       tax.Calculator
	providers map[string]billing.Provider
	config    CheckoutConfig
	validate  *validator.Validate
	logger    *slog.Logger
}

// Compile-time check that Checkout implements domain.CheckoutService.
var _ domain.CheckoutService = (*Checkout)(nil)

// NewCheckout creates the checkout orchestrator. providers maps payment mode
// ("test"/"live") to the matching billing provider.
func NewCheckout(
	cartValidator *CartValidator,
	engine *pricing.Engine,
	settings domain.SettingsStore,
	donations domain.DonationStore,
	orders domain.OrderStore,
	shippingCalc shipping.Calculator,
	taxCalc tax.Calculator,
	providers map[string]billing.Provider,
	config CheckoutConfig,
	logger *slog.Logger,
) *Checkout {
	if config.Currency == "" {
		config.Currency = "usd"
	}
	if config.DefaultVendor == "" {
		config.DefaultVendor = domain.VendorSinalite
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checkout{
		validator: cartValidator,
		engine:    engine,
		settings:  settings,
		donations: donations,
		orders:    orders,
		shipping:  shippingCalc,
		tax:       taxCalc,
		providers: providers,
		config:    config,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// CreateSession runs the full checkout pipeline. Any failure before the
// provisional order insert aborts with nothing written; after it, the order
// remains in state created forever, which is accepted since no money moved.
func (c *Checkout) CreateSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, domain.Invalid("checkout.create", fmt.Sprintf("invalid request: %v", err))
	}
	if req.DonationCents > domain.MaxDonationCents {
		return nil, ErrDonationTooLarge
	}

	provider, paymentMode := c.resolveProvider(ctx)
	nonprofit := c.resolveNonprofit(ctx, req.NonprofitID)

	settings, err := c.settings.GetPricingSettings(ctx, c.config.DefaultVendor)
	if err != nil {
		c.logger.Error("failed to load pricing settings", slog.String("error", err.Error()))
		return nil, ErrPricingConfig
	}

	validated, err := c.validator.ValidateCart(ctx, req.Cart)
	if err != nil {
		return nil, err
	}

	orderItems := make([]domain.OrderItem, 0, len(validated))
	var subtotal int64
	for _, v := range validated {
		quote := c.engine.Quote(v.Product.Vendor, v.Product.BaseCostCents, *settings)

		// The client-displayed price is authoritative (the configurator may
		// apply per-variant quotes the server cannot reproduce); the floor
		// check in validation is the anti-tampering bound.
		unitPrice := v.Item.PriceCents
		lineSubtotal := unitPrice * int64(v.Item.Quantity)
		subtotal += lineSubtotal

		orderItems = append(orderItems, domain.OrderItem{
			ProductID:         v.ProductID,
			ProductName:       v.Product.Name,
			Vendor:            v.Product.Vendor,
			Category:          v.Product.Category,
			Quantity:          v.Item.Quantity,
			UnitPriceCents:    unitPrice,
			LineSubtotalCents: lineSubtotal,
			MarkupCents:       quote.MarkupCents,
			DonationCents:     quote.DonationPerUnitCents,
			Configuration:     v.Item.Configuration,
			ArtworkURL:        v.Item.ArtworkURL,
		})
	}

	shippingCents, err := c.shipping.CalculateShipping(ctx, lo.Map(orderItems, func(item domain.OrderItem, _ int) shipping.Item {
		return shipping.Item{
			ProductName: item.ProductName,
			Category:    item.Category,
			Quantity:    item.Quantity,
		}
	}))
	if err != nil {
		return nil, domain.Internal(err, "checkout.create", "failed to calculate shipping")
	}

	taxResult, err := c.tax.CalculateTax(ctx, tax.TaxParams{
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		Currency:      c.config.Currency,
	})
	if err != nil {
		return nil, domain.Internal(err, "checkout.create", "failed to calculate tax")
	}

	total := subtotal + shippingCents + taxResult.TotalTaxCents + req.DonationCents

	order := &domain.Order{
		ID:            uuid.New(),
		OrderNumber:   c.nextOrderNumber(ctx),
		Status:        domain.OrderStatusCreated,
		SessionID:     sessionPlaceholder,
		PaymentMode:   paymentMode,
		CustomerEmail: req.CustomerEmail,
		Items:         orderItems,
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		TaxCents:      taxResult.TotalTaxCents,
		DonationCents: req.DonationCents,
		TotalCents:    total,
		Currency:      c.config.Currency,
		VendorKey:     c.orderVendor(orderItems),
	}
	if nonprofit != nil {
		order.NonprofitID = &nonprofit.ID
		order.NonprofitName = nonprofit.Name
		order.NonprofitEIN = nonprofit.EIN
		order.CauseID = nonprofit.CauseID
	}

	// Provisional insert before the provider call so the webhook can always
	// find the order even if session creation partially fails.
	if err := c.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	if telemetry.Business != nil {
		telemetry.Business.OrdersCreated.WithLabelValues(order.VendorKey).Inc()
		telemetry.Business.OrderValue.WithLabelValues(order.VendorKey).Observe(float64(order.TotalCents) / 100)
		telemetry.Business.OrderItemCount.Observe(float64(len(order.Items)))
	}

	session, err := provider.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionParams{
		Currency:      c.config.Currency,
		LineItems:     c.buildLineItems(order),
		SuccessURL:    c.config.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     c.config.BaseURL + "/checkout/cancel",
		CustomerEmail: req.CustomerEmail,
		Metadata:      c.buildMetadata(order, req),
	})
	if err != nil {
		c.logger.Error("checkout session creation failed",
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()))
		return nil, ErrSessionCreation
	}

	// The reserved automatic-tax path surfaces a provider-computed amount
	// here; with tax disabled this stays zero.
	taxCents := order.TaxCents
	if session.TaxCents > 0 {
		taxCents = session.TaxCents
	}
	if err := c.orders.UpdateOrderSession(ctx, order.ID, session.ID, taxCents); err != nil {
		return nil, err
	}

	c.logger.Info("checkout session created",
		slog.String("order_number", order.OrderNumber),
		slog.String("session_id", session.ID),
		slog.Int64("total_cents", total),
		slog.String("payment_mode", paymentMode))

	return &domain.CheckoutResponse{
		URL:         session.URL,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		TaxCents:    taxCents,
		TotalCents:  total - order.TaxCents + taxCents,
	}, nil
}

// resolveProvider picks the billing provider for the persisted payment mode,
// defaulting to test when the setting is absent or unmatched.
func (c *Checkout) resolveProvider(ctx context.Context) (billing.Provider, string) {
	mode, err := c.settings.GetSetting(ctx, paymentModeKey)
	if err != nil {
		c.logger.Warn("failed to read payment mode, using test", slog.String("error", err.Error()))
		mode = "test"
	}
	if mode == "" {
		mode = "test"
	}
	if provider, ok := c.providers[mode]; ok {
		return provider, mode
	}
	c.logger.Warn("no provider for payment mode, using test", slog.String("mode", mode))
	return c.providers["test"], "test"
}

// resolveNonprofit returns display fields for the selected nonprofit.
// Absence or lookup failure yields nil fields, not an error.
func (c *Checkout) resolveNonprofit(ctx context.Context, id string) *domain.Nonprofit {
	if id == "" {
		return nil
	}
	nonprofitID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	nonprofit, err := c.donations.GetNonprofit(ctx, nonprofitID)
	if err != nil {
		c.logger.Warn("nonprofit lookup failed", slog.String("nonprofit_id", id), slog.String("error", err.Error()))
		return nil
	}
	return nonprofit
}

// nextOrderNumber delegates to the database sequence; on failure it falls
// back to a timestamp+random composite so checkout never blocks on numbering.
func (c *Checkout) nextOrderNumber(ctx context.Context) string {
	number, err := c.orders.NextOrderNumber(ctx)
	if err != nil {
		c.logger.Warn("order number sequence failed, using fallback", slog.String("error", err.Error()))
		return fmt.Sprintf("PPP-%d-%04d", time.Now().Unix(), rand.Intn(10000))
	}
	return number
}

// orderVendor attributes the whole order to the first item's vendor.
// Mixed-vendor carts are not modeled; single vendor per order is assumed.
func (c *Checkout) orderVendor(items []domain.OrderItem) string {
	for _, item := range items {
		if item.Vendor != "" {
			return item.Vendor
		}
	}
	return c.config.DefaultVendor
}

func (c *Checkout) buildLineItems(order *domain.Order) []billing.LineItem {
	lineItems := lo.Map(order.Items, func(item domain.OrderItem, _ int) billing.LineItem {
		return billing.LineItem{
			Name:            item.ProductName,
			Description:     describeConfiguration(item.Configuration),
			UnitAmountCents: item.UnitPriceCents,
			Quantity:        int64(item.Quantity),
		}
	})
	if order.ShippingCents > 0 {
		lineItems = append(lineItems, billing.LineItem{
			Name:            "Shipping",
			UnitAmountCents: order.ShippingCents,
			Quantity:        1,
		})
	}
	if order.DonationCents > 0 {
		name := "Donation"
		if order.NonprofitName != "" {
			name = "Donation to " + order.NonprofitName
		}
		lineItems = append(lineItems, billing.LineItem{
			Name:            name,
			UnitAmountCents: order.DonationCents,
			Quantity:        1,
		})
	}
	return lineItems
}

// buildMetadata packs everything the webhook needs so completion requires no
// second database round-trip.
func (c *Checkout) buildMetadata(order *domain.Order, req domain.CheckoutRequest) map[string]string {
	metadata := map[string]string{
		"order_id":       order.ID.String(),
		"order_number":   order.OrderNumber,
		"donation_cents": fmt.Sprintf("%d", order.DonationCents),
		"shipping_cents": fmt.Sprintf("%d", order.ShippingCents),
	}
	if order.NonprofitID != nil {
		metadata["nonprofit_id"] = order.NonprofitID.String()
		metadata["nonprofit_name"] = order.NonprofitName
		metadata["nonprofit_ein"] = order.NonprofitEIN
	}
	if order.CauseID != nil {
		metadata["cause_id"] = order.CauseID.String()
	}
	if req.TermsVersion != "" {
		metadata["terms_version"] = req.TermsVersion
	}
	if req.PrivacyVersion != "" {
		metadata["privacy_version"] = req.PrivacyVersion
	}
	return metadata
}

func describeConfiguration(config map[string]string) string {
	if len(config) == 0 {
		return ""
	}
	color, size := config["color"], config["size"]
	switch {
	case color != "" && size != "":
		return color + " / " + size
	case color != "":
		return color
	case size != "":
		return size
	}
	return ""
}

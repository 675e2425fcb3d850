package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/printpower/storefront/internal/telemetry"
)

// StripeProvider implements Provider using the Stripe API.
// Each provider instance carries its own API client so test-mode and
// live-mode providers can coexist in one process.
type StripeProvider struct {
	config StripeConfig
	api    *client.API
	logger *slog.Logger
}

// NewStripeProvider creates a new Stripe payment provider.
func NewStripeProvider(config StripeConfig, logger *slog.Logger) (*StripeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	api := &client.API{}
	api.Init(config.APIKey, nil)

	logger.Info("stripe provider initialized",
		slog.Bool("test_mode", config.IsTestMode()),
		slog.Bool("automatic_tax", config.EnableStripeTax))

	return &StripeProvider{
		config: config,
		api:    api,
		logger: logger,
	}, nil
}

// CreateCheckoutSession creates a hosted Stripe Checkout session in payment
// mode. All amounts are passed in the smallest currency unit.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	start := time.Now()

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.LineItems))
	for _, item := range params.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			productData.Description = stripe.String(item.Description)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(params.Currency),
				UnitAmount:  stripe.Int64(item.UnitAmountCents),
				ProductData: productData,
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	sessionParams.Context = ctx

	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	if len(params.Metadata) > 0 {
		sessionParams.Metadata = params.Metadata
	}
	if params.EnableAutomaticTax {
		sessionParams.AutomaticTax = &stripe.CheckoutSessionAutomaticTaxParams{
			Enabled: stripe.Bool(true),
		}
	}

	sess, err := p.api.CheckoutSessions.New(sessionParams)
	if telemetry.Business != nil {
		telemetry.Business.StripeAPILatency.WithLabelValues("create_checkout_session").Observe(time.Since(start).Seconds())
	}
	if err != nil {
		p.logger.Error("failed to create checkout session",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, &ProviderError{Op: "create_checkout_session", Err: err}
	}

	p.logger.Info("checkout session created",
		slog.String("session_id", sess.ID),
		slog.Duration("duration", time.Since(start)))

	return SessionFromStripe(sess), nil
}

// GetCheckoutSession retrieves an existing checkout session by id.
func (p *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	start := time.Now()
	sess, err := p.api.CheckoutSessions.Get(sessionID, params)
	if telemetry.Business != nil {
		telemetry.Business.StripeAPILatency.WithLabelValues("get_checkout_session").Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, &ProviderError{Op: "get_checkout_session", Err: err}
	}

	return SessionFromStripe(sess), nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature against the raw
// request body. Must be called before any event field is trusted.
func (p *StripeProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	if secret == "" {
		secret = p.config.WebhookSecret
	}
	if _, err := webhook.ConstructEvent(payload, signature, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// SessionFromStripe converts a Stripe checkout session into the
// provider-neutral representation. The webhook handler uses it on verified
// event payloads.
func SessionFromStripe(sess *stripe.CheckoutSession) *CheckoutSession {
	result := &CheckoutSession{
		ID:               sess.ID,
		URL:              sess.URL,
		AmountTotalCents: sess.AmountTotal,
		Currency:         string(sess.Currency),
		Status:           string(sess.Status),
		CustomerEmail:    sess.CustomerEmail,
		Metadata:         sess.Metadata,
		CreatedAt:        time.Unix(sess.Created, 0),
	}
	if sess.PaymentIntent != nil {
		result.PaymentIntentID = sess.PaymentIntent.ID
		if sess.PaymentIntent.LatestCharge != nil {
			result.ReceiptURL = sess.PaymentIntent.LatestCharge.ReceiptURL
		}
	}
	if sess.TotalDetails != nil {
		result.TaxCents = sess.TotalDetails.AmountTax
	}
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		result.CustomerEmail = sess.CustomerDetails.Email
	}
	return result
}

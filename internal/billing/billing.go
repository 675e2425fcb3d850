package billing

import (
	"context"
	"time"
)

// Provider defines the interface for payment processing.
// Implementations can use Stripe, PayPal, Square, etc.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout session and returns
	// its redirect URL. The session carries metadata consumed later by the
	// payment webhook so completion does not need a second lookup.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSession retrieves an existing checkout session.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	// Must be called on the raw body before trusting any event field.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// LineItem is one priced line of a checkout session: a cart item at its
// server-validated unit price, a shipping charge, or a donation.
type LineItem struct {
	Name string

	// Description shown under the name on the hosted page (optional).
	Description string

	// UnitAmountCents is the per-unit price in smallest currency unit.
	UnitAmountCents int64

	Quantity int64
}

// CreateCheckoutSessionParams contains parameters for creating a session.
type CreateCheckoutSessionParams struct {
	// Currency code (ISO 4217 lowercase) - e.g. "usd"
	Currency string

	LineItems []LineItem

	// SuccessURL and CancelURL are the hosted page redirect targets.
	SuccessURL string
	CancelURL  string

	// CustomerEmail prefills the payment page when known.
	CustomerEmail string

	// Metadata is echoed back on the completion webhook. Always includes
	// order_id and order_number.
	Metadata map[string]string

	// EnableAutomaticTax asks the provider's tax engine to compute tax.
	// Disabled by default; the reserved code path retrieves the computed
	// amount from the created session.
	EnableAutomaticTax bool
}

// CheckoutSession represents a hosted checkout session.
type CheckoutSession struct {
	// ID is the provider session id (cs_...).
	ID string

	// URL is the hosted payment page the client is redirected to.
	URL string

	AmountTotalCents int64
	TaxCents         int64
	Currency         string

	// Status: open, complete, expired.
	Status string

	PaymentIntentID string

	// ReceiptURL is only present when the payment intent's latest charge
	// was expanded into the session payload.
	ReceiptURL string

	CustomerEmail string
	Metadata      map[string]string
	CreatedAt     time.Time
}

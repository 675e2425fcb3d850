package domain

import "context"

// Cart size and item bounds enforced before any money moves.
const (
	MaxCartItems     = 50
	MaxItemQuantity  = 10000
	MaxDonationCents = 1_000_000
)

// CartItem is the ephemeral, client-supplied line item of a checkout request.
// Prices are sanity-checked against the catalog, never trusted blindly.
type CartItem struct {
	ID            string            `json:"id" validate:"required,uuid"`
	Quantity      int               `json:"quantity" validate:"required,min=1,max=10000"`
	PriceCents    int64             `json:"priceCents" validate:"min=0"`
	Configuration map[string]string `json:"configuration,omitempty"`
	ArtworkURL    string            `json:"artworkUrl,omitempty"`
}

// Color and Size return the apparel configuration values, if present.
func (i CartItem) Color() string { return i.Configuration["color"] }
func (i CartItem) Size() string  { return i.Configuration["size"] }

// Cart wraps the items array of a checkout request.
type Cart struct {
	Items []CartItem `json:"items" validate:"required,min=1,max=50,dive"`
}

// CheckoutRequest is the payload of POST /api/checkout/session.
type CheckoutRequest struct {
	Cart          Cart   `json:"cart" validate:"required"`
	NonprofitID   string `json:"nonprofitId,omitempty" validate:"omitempty,uuid"`
	DonationCents int64  `json:"donationCents,omitempty" validate:"min=0,max=1000000"`

	// Policy versions accepted at checkout, carried through session metadata.
	TermsVersion   string `json:"termsVersion,omitempty"`
	PrivacyVersion string `json:"privacyVersion,omitempty"`

	// CustomerEmail prefills the hosted checkout page when known.
	CustomerEmail string `json:"customerEmail,omitempty" validate:"omitempty,email"`
}

// CheckoutResponse is returned on successful session creation.
type CheckoutResponse struct {
	URL         string `json:"url"`
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	TaxCents    int64  `json:"taxCents"`
	TotalCents  int64  `json:"totalCents"`
}

// CheckoutService validates, prices, and persists a provisional order, then
// creates a hosted payment session for it.
type CheckoutService interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printpower/storefront/internal/billing"
	"github.com/printpower/storefront/internal/domain"
	"github.com/printpower/storefront/internal/pricing"
	"github.com/printpower/storefront/internal/shipping"
	"github.com/printpower/storefront/internal/tax"
)

type checkoutFixture struct {
	checkout  *Checkout
	orders    *mockOrderStore
	provider  *billing.MockProvider
	productID uuid.UUID
	created   []*domain.Order
}

func defaultSettings() *domain.PricingSettings {
	return &domain.PricingSettings{
		Vendor:              domain.VendorSinalite,
		MarkupMode:          domain.MarkupModeFixed,
		MarkupFixedCents:    200,
		NonprofitShareMode:  domain.ShareModeFixed,
		NonprofitFixedCents: 100,
		Currency:            "usd",
	}
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		productID: uuid.New(),
		provider:  billing.NewMockProvider(),
	}

	products := singleProductStore(activeProduct(f.productID, domain.VendorSinalite, 1000))

	f.orders = &mockOrderStore{
		CreateOrderFunc: func(ctx context.Context, order *domain.Order) error {
			f.created = append(f.created, order)
			return nil
		},
		UpdateOrderSessionFunc: func(ctx context.Context, orderID uuid.UUID, sessionID string, taxCents int64) error {
			return nil
		},
		NextOrderNumberFunc: func(ctx context.Context) (string, error) {
			return "PPP-1042", nil
		},
	}

	donations := &mockDonationStore{
		GetNonprofitFunc: func(ctx context.Context, id uuid.UUID) (*domain.Nonprofit, error) {
			return nil, domain.NotFound("nonprofit.get", "nonprofit", id.String())
		},
	}

	settings := &mockSettingsStore{
		GetPricingSettingsFunc: func(ctx context.Context, vendor string) (*domain.PricingSettings, error) {
			return defaultSettings(), nil
		},
	}

	f.checkout = NewCheckout(
		NewCartValidator(products),
		pricing.NewEngine(domain.VendorSinalite),
		settings,
		donations,
		f.orders,
		shipping.NewTierCalculator(nil, 500),
		tax.NewNoTaxCalculator(),
		map[string]billing.Provider{"test": f.provider},
		CheckoutConfig{BaseURL: "https://printpowerpurpose.com", Currency: "usd"},
		nil,
	)
	return f
}

func validRequest(productID uuid.UUID) domain.CheckoutRequest {
	return domain.CheckoutRequest{
		Cart: domain.Cart{
			Items: []domain.CartItem{
				{ID: productID.String(), Quantity: 10, PriceCents: 1200},
			},
		},
	}
}

func TestCheckout_CreateSession(t *testing.T) {
	f := newCheckoutFixture(t)

	resp, err := f.checkout.CreateSession(context.Background(), validRequest(f.productID))
	require.NoError(t, err)

	// 10 × 1200 subtotal + 900 business-cards shipping tier
	assert.Equal(t, int64(12900), resp.TotalCents)
	assert.Equal(t, "PPP-1042", resp.OrderNumber)
	assert.Equal(t, int64(0), resp.TaxCents)
	assert.NotEmpty(t, resp.URL)

	require.Len(t, f.created, 1)
	order := f.created[0]
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
	assert.Equal(t, sessionPlaceholder, order.SessionID)
	assert.Equal(t, int64(12000), order.SubtotalCents)
	assert.Equal(t, int64(900), order.ShippingCents)
	assert.Equal(t, domain.VendorSinalite, order.VendorKey)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(1200), order.Items[0].UnitPriceCents)
	assert.Equal(t, int64(200), order.Items[0].MarkupCents)
	assert.Equal(t, int64(100), order.Items[0].DonationCents)
}

func TestCheckout_SessionMetadataCarriesOrderFields(t *testing.T) {
	f := newCheckoutFixture(t)

	var gotParams billing.CreateCheckoutSessionParams
	f.provider.CreateCheckoutSessionFunc = func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
		gotParams = params
		return &billing.CheckoutSession{ID: "cs_1", URL: "https://pay.example.com/cs_1"}, nil
	}

	req := validRequest(f.productID)
	req.DonationCents = 500
	req.TermsVersion = "2026-01"

	_, err := f.checkout.CreateSession(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.created, 1)
	assert.Equal(t, f.created[0].ID.String(), gotParams.Metadata["order_id"])
	assert.Equal(t, "PPP-1042", gotParams.Metadata["order_number"])
	assert.Equal(t, "500", gotParams.Metadata["donation_cents"])
	assert.Equal(t, "2026-01", gotParams.Metadata["terms_version"])

	// one product line, one shipping line, one donation line
	require.Len(t, gotParams.LineItems, 3)
	assert.Equal(t, int64(1200), gotParams.LineItems[0].UnitAmountCents)
	assert.Equal(t, int64(10), gotParams.LineItems[0].Quantity)
	assert.Equal(t, "Shipping", gotParams.LineItems[1].Name)
	assert.Equal(t, "Donation", gotParams.LineItems[2].Name)
	assert.Equal(t, int64(500), gotParams.LineItems[2].UnitAmountCents)
}

func TestCheckout_NonprofitResolution(t *testing.T) {
	f := newCheckoutFixture(t)
	nonprofitID := uuid.New()
	causeID := uuid.New()

	donations := &mockDonationStore{
		GetNonprofitFunc: func(ctx context.Context, id uuid.UUID) (*domain.Nonprofit, error) {
			return &domain.Nonprofit{ID: nonprofitID, Name: "Clean Water Fund", EIN: "12-3456789", CauseID: &causeID}, nil
		},
	}
	f.checkout.donations = donations

	req := validRequest(f.productID)
	req.NonprofitID = nonprofitID.String()
	req.DonationCents = 500

	_, err := f.checkout.CreateSession(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.created, 1)
	order := f.created[0]
	require.NotNil(t, order.NonprofitID)
	assert.Equal(t, nonprofitID, *order.NonprofitID)
	assert.Equal(t, "Clean Water Fund", order.NonprofitName)
	require.NotNil(t, order.CauseID)
	assert.Equal(t, causeID, *order.CauseID)
	assert.Equal(t, int64(500), order.DonationCents)
}

func TestCheckout_UnknownNonprofitYieldsEmptyFields(t *testing.T) {
	f := newCheckoutFixture(t)

	req := validRequest(f.productID)
	req.NonprofitID = uuid.NewString()

	_, err := f.checkout.CreateSession(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.created, 1)
	assert.Nil(t, f.created[0].NonprofitID)
	assert.Empty(t, f.created[0].NonprofitName)
}

func TestCheckout_DonationBound(t *testing.T) {
	f := newCheckoutFixture(t)

	req := validRequest(f.productID)
	req.DonationCents = domain.MaxDonationCents + 1

	_, err := f.checkout.CreateSession(context.Background(), req)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.EINVALID))
	assert.Empty(t, f.created, "no order row may be written on validation failure")
}

func TestCheckout_ValidationFailureWritesNoOrder(t *testing.T) {
	f := newCheckoutFixture(t)

	req := domain.CheckoutRequest{
		Cart: domain.Cart{
			Items: []domain.CartItem{
				{ID: f.productID.String(), Quantity: 1, PriceCents: 100}, // below floor
			},
		},
	}
	_, err := f.checkout.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, ErrPriceTampering)
	assert.Empty(t, f.created)
}

func TestCheckout_PricingConfigFailureAborts(t *testing.T) {
	f := newCheckoutFixture(t)
	f.checkout.settings = &mockSettingsStore{
		GetPricingSettingsFunc: func(ctx context.Context, vendor string) (*domain.PricingSettings, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, err := f.checkout.CreateSession(context.Background(), validRequest(f.productID))
	assert.ErrorIs(t, err, ErrPricingConfig)
	assert.Empty(t, f.created)
}

func TestCheckout_SessionFailureLeavesProvisionalOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.provider.CreateCheckoutSessionFunc = func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
		return nil, errors.New("stripe unavailable")
	}

	_, err := f.checkout.CreateSession(context.Background(), validRequest(f.productID))
	assert.ErrorIs(t, err, ErrSessionCreation)

	// The provisional row was written before the provider call and stays.
	require.Len(t, f.created, 1)
	assert.Equal(t, domain.OrderStatusCreated, f.created[0].Status)
}

func TestCheckout_OrderNumberFallback(t *testing.T) {
	f := newCheckoutFixture(t)
	f.orders.NextOrderNumberFunc = func(ctx context.Context) (string, error) {
		return "", errors.New("sequence unavailable")
	}

	resp, err := f.checkout.CreateSession(context.Background(), validRequest(f.productID))
	require.NoError(t, err)
	assert.Regexp(t, `^PPP-\d+-\d{4}$`, resp.OrderNumber)
}

func TestCheckout_PaymentModeSelection(t *testing.T) {
	f := newCheckoutFixture(t)
	liveProvider := billing.NewMockProvider()
	f.checkout.providers["live"] = liveProvider
	f.checkout.settings = &mockSettingsStore{
		GetPricingSettingsFunc: func(ctx context.Context, vendor string) (*domain.PricingSettings, error) {
			return defaultSettings(), nil
		},
		GetSettingFunc: func(ctx context.Context, key string) (string, error) {
			return "live", nil
		},
	}

	_, err := f.checkout.CreateSession(context.Background(), validRequest(f.productID))
	require.NoError(t, err)

	assert.NotEmpty(t, liveProvider.Calls())
	assert.Empty(t, f.provider.Calls())
	require.Len(t, f.created, 1)
	assert.Equal(t, "live", f.created[0].PaymentMode)
}

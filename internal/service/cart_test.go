package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printpower/storefront/internal/domain"
)

func activeProduct(id uuid.UUID, vendor string, baseCost int64) *domain.Product {
	return &domain.Product{
		ID:            id,
		Name:          "Test Product",
		Vendor:        vendor,
		Category:      "business-cards",
		BaseCostCents: baseCost,
		IsActive:      true,
	}
}

func singleProductStore(p *domain.Product) *mockProductStore {
	return &mockProductStore{
		GetProductFunc: func(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
			if p != nil && id == p.ID {
				return p, nil
			}
			return nil, domain.NotFound("product.get", "product", id.String())
		},
	}
}

func TestCartValidator_ValidCart(t *testing.T) {
	productID := uuid.New()
	v := NewCartValidator(singleProductStore(activeProduct(productID, domain.VendorSinalite, 1000)))

	items, err := v.ValidateCart(context.Background(), domain.Cart{
		Items: []domain.CartItem{
			{ID: productID.String(), Quantity: 5, PriceCents: 1200},
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, productID, items[0].ProductID)
	assert.Equal(t, "Test Product", items[0].Product.Name)
}

func TestCartValidator_AcceptsAnyUUIDVersion(t *testing.T) {
	// Catalog ids are not guaranteed to be version 4.
	productID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8") // v1
	v := NewCartValidator(singleProductStore(activeProduct(productID, domain.VendorSinalite, 1000)))

	items, err := v.ValidateCart(context.Background(), domain.Cart{
		Items: []domain.CartItem{
			{ID: productID.String(), Quantity: 1, PriceCents: 1200},
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, productID, items[0].ProductID)
}

func TestCartValidator_StructuralFailures(t *testing.T) {
	productID := uuid.New()
	v := NewCartValidator(singleProductStore(activeProduct(productID, domain.VendorSinalite, 1000)))

	t.Run("empty cart", func(t *testing.T) {
		_, err := v.ValidateCart(context.Background(), domain.Cart{})
		assert.ErrorIs(t, err, ErrCartEmpty)
	})

	t.Run("too many items", func(t *testing.T) {
		items := make([]domain.CartItem, domain.MaxCartItems+1)
		for i := range items {
			items[i] = domain.CartItem{ID: productID.String(), Quantity: 1, PriceCents: 1200}
		}
		_, err := v.ValidateCart(context.Background(), domain.Cart{Items: items})
		assert.ErrorIs(t, err, ErrTooManyItems)
	})

	t.Run("malformed product id", func(t *testing.T) {
		_, err := v.ValidateCart(context.Background(), domain.Cart{
			Items: []domain.CartItem{{ID: "not-a-uuid", Quantity: 1, PriceCents: 1200}},
		})
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})

	t.Run("quantity above bound", func(t *testing.T) {
		_, err := v.ValidateCart(context.Background(), domain.Cart{
			Items: []domain.CartItem{{ID: productID.String(), Quantity: domain.MaxItemQuantity + 1, PriceCents: 1200}},
		})
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})
}

func TestCartValidator_ProductUnavailable(t *testing.T) {
	productID := uuid.New()

	t.Run("unknown product", func(t *testing.T) {
		v := NewCartValidator(singleProductStore(nil))
		_, err := v.ValidateCart(context.Background(), domain.Cart{
			Items: []domain.CartItem{{ID: productID.String(), Quantity: 1, PriceCents: 1200}},
		})
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("inactive product", func(t *testing.T) {
		inactive := activeProduct(productID, domain.VendorSinalite, 1000)
		inactive.IsActive = false
		v := NewCartValidator(singleProductStore(inactive))
		_, err := v.ValidateCart(context.Background(), domain.Cart{
			Items: []domain.CartItem{{ID: productID.String(), Quantity: 1, PriceCents: 1200}},
		})
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})
}

func TestCartValidator_PriceFloor(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name     string
		baseCost int64
		price    int64
		wantErr  bool
	}{
		{name: "price at exactly half of base passes", baseCost: 1000, price: 500, wantErr: false},
		{name: "price one cent below half fails", baseCost: 1000, price: 499, wantErr: true},
		{name: "cheap product floor is 100 not base", baseCost: 60, price: 50, wantErr: false},
		{name: "cheap product below 50 fails", baseCost: 60, price: 49, wantErr: true},
		{name: "zero price fails", baseCost: 1000, price: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewCartValidator(singleProductStore(activeProduct(productID, domain.VendorSinalite, tt.baseCost)))
			_, err := v.ValidateCart(context.Background(), domain.Cart{
				Items: []domain.CartItem{{ID: productID.String(), Quantity: 1, PriceCents: tt.price}},
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPriceTampering)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCartValidator_ApparelStock(t *testing.T) {
	productID := uuid.New()
	apparel := func() *domain.Product {
		p := activeProduct(productID, domain.VendorScalablePress, 800)
		p.Name = "Classic Tee"
		p.Category = "apparel"
		p.PricingData = &domain.PricingData{
			Stock: map[string]map[string]int{
				"Black": {"S": 10, "M": 0, "L": 3},
				"Red":   {"S": 0, "M": 0},
			},
		}
		return p
	}

	item := func(color, size string, qty int) domain.CartItem {
		return domain.CartItem{
			ID:            productID.String(),
			Quantity:      qty,
			PriceCents:    900,
			Configuration: map[string]string{"color": color, "size": size},
		}
	}

	tests := []struct {
		name    string
		item    domain.CartItem
		wantErr error
		wantMsg string
	}{
		{name: "in-stock size passes", item: item("Black", "S", 5)},
		{name: "color key match is case-insensitive", item: item("black", "L", 2)},
		{name: "all sizes zero for color", item: item("Red", "S", 1), wantErr: ErrColorOutOfStock, wantMsg: `"Classic Tee" in Red is out of stock`},
		{name: "specific size zero", item: item("Black", "M", 1), wantErr: ErrSizeOutOfStock, wantMsg: `"Classic Tee" in Black/M is out of stock`},
		{name: "quantity above available", item: item("Black", "L", 4), wantErr: ErrInsufficientStock, wantMsg: `only 3 of "Classic Tee" in Black/L available`},
		{name: "unknown color passes through", item: item("Green", "S", 1)},
		{name: "unknown size passes through", item: item("Black", "XXL", 1)},
		{name: "no configuration skips stock check", item: domain.CartItem{ID: productID.String(), Quantity: 1, PriceCents: 900}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewCartValidator(singleProductStore(apparel()))
			_, err := v.ValidateCart(context.Background(), domain.Cart{Items: []domain.CartItem{tt.item}})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantMsg, domain.ErrorMessage(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCartValidator_StockCheckOnlyForApparelVendor(t *testing.T) {
	productID := uuid.New()
	p := activeProduct(productID, domain.VendorSinalite, 800)
	p.PricingData = &domain.PricingData{
		Stock: map[string]map[string]int{"Black": {"S": 0}},
	}
	v := NewCartValidator(singleProductStore(p))

	_, err := v.ValidateCart(context.Background(), domain.Cart{
		Items: []domain.CartItem{{
			ID:            productID.String(),
			Quantity:      1,
			PriceCents:    900,
			Configuration: map[string]string{"color": "Black", "size": "S"},
		}},
	})
	assert.NoError(t, err)
}

func TestCartValidator_ErrorNamesFailingItem(t *testing.T) {
	cardsID, teeID := uuid.New(), uuid.New()
	cards := activeProduct(cardsID, domain.VendorSinalite, 1000)
	cards.Name = "Matte Business Cards"
	tee := activeProduct(teeID, domain.VendorScalablePress, 800)
	tee.Name = "Premium Hoodie"
	tee.PricingData = &domain.PricingData{
		Stock: map[string]map[string]int{"Red": {"L": 0}},
	}

	v := NewCartValidator(&mockProductStore{
		GetProductFunc: func(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
			switch id {
			case cardsID:
				return cards, nil
			case teeID:
				return tee, nil
			}
			return nil, domain.NotFound("product.get", "product", id.String())
		},
	})

	_, err := v.ValidateCart(context.Background(), domain.Cart{
		Items: []domain.CartItem{
			{ID: cardsID.String(), Quantity: 1, PriceCents: 1200},
			{ID: teeID.String(), Quantity: 1, PriceCents: 900,
				Configuration: map[string]string{"color": "Red", "size": "L"}},
		},
	})
	require.Error(t, err)
	msg := domain.ErrorMessage(err)
	assert.Contains(t, msg, "Premium Hoodie", "message should name the failing product")
	assert.Contains(t, msg, "Red", "message should name the failing variant")
	assert.NotContains(t, msg, "Matte Business Cards")
}

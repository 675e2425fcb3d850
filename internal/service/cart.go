package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/printpower/storefront/internal/domain"
)

// CartValidator rejects a checkout request before it touches the payment
// provider or the database's write path beyond lookups. Every failure aborts
// the whole checkout; there are no partial results.
type CartValidator struct {
	products domain.ProductStore
	validate *validator.Validate
}

// NewCartValidator creates a cart validator backed by the product catalog.
func NewCartValidator(products domain.ProductStore) *CartValidator {
	return &CartValidator{
		products: products,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidatedItem pairs a cart item with its resolved catalog product after
// all checks passed.
type ValidatedItem struct {
	Item      domain.CartItem
	ProductID uuid.UUID
	Product   *domain.Product
}

// ValidateCart checks structure, product existence, stock, and the
// anti-tampering price floor for every item.
func (v *CartValidator) ValidateCart(ctx context.Context, cart domain.Cart) ([]ValidatedItem, error) {
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}
	if len(cart.Items) > domain.MaxCartItems {
		return nil, ErrTooManyItems
	}
	if err := v.validate.Struct(cart); err != nil {
		return nil, domain.Invalid("cart.validate", fmt.Sprintf("invalid cart item: %v", err))
	}

	items := make([]ValidatedItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		validated, err := v.validateItem(ctx, item)
		if err != nil {
			return nil, err
		}
		items = append(items, *validated)
	}
	return items, nil
}

// itemError rewraps a cart sentinel with a message naming the offending
// product and variant, so the customer sees which line item to fix.
// errors.Is against the sentinel still matches through the wrap.
func itemError(sentinel error, format string, args ...interface{}) error {
	return &domain.Error{
		Code:    domain.ErrorCode(sentinel),
		Op:      "cart.validate",
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

func (v *CartValidator) validateItem(ctx context.Context, item domain.CartItem) (*ValidatedItem, error) {
	productID, err := uuid.Parse(item.ID)
	if err != nil {
		return nil, domain.Invalid("cart.validate", "invalid product id")
	}
	if item.Quantity < 1 || item.Quantity > domain.MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	product, err := v.products.GetProduct(ctx, productID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, itemError(ErrProductUnavailable, "%q is no longer available", product.Name)
	}

	if err := checkStock(product, item); err != nil {
		return nil, err
	}
	if err := checkPriceFloor(product, item); err != nil {
		return nil, err
	}

	return &ValidatedItem{Item: item, ProductID: productID, Product: product}, nil
}

// checkStock enforces per-color/per-size availability for the apparel vendor.
// Products without a configuration or stored stock map pass through.
func checkStock(product *domain.Product, item domain.CartItem) error {
	if product.Vendor != domain.VendorScalablePress {
		return nil
	}
	color, size := item.Color(), item.Size()
	if color == "" || size == "" {
		return nil
	}

	sizes := product.PricingData.StockForColor(color)
	if sizes == nil {
		return nil
	}

	total := 0
	for _, qty := range sizes {
		total += qty
	}
	if total == 0 {
		return itemError(ErrColorOutOfStock, "%q in %s is out of stock", product.Name, color)
	}

	available, ok := sizes[size]
	if !ok {
		return nil
	}
	if available == 0 {
		return itemError(ErrSizeOutOfStock, "%q in %s/%s is out of stock", product.Name, color, size)
	}
	if item.Quantity > available {
		return itemError(ErrInsufficientStock, "only %d of %q in %s/%s available", available, product.Name, color, size)
	}
	return nil
}

// checkPriceFloor rejects a client-displayed price below half of
// max(100, base cost). The comparison is doubled to stay in integers.
func checkPriceFloor(product *domain.Product, item domain.CartItem) error {
	floor := product.BaseCostCents
	if floor < 100 {
		floor = 100
	}
	if item.PriceCents*2 < floor {
		return itemError(ErrPriceTampering, "price for %q is below the allowed floor", product.Name)
	}
	return nil
}

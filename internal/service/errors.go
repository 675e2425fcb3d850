package service

import (
	"github.com/printpower/storefront/internal/domain"
)

// Cart validation errors - use domain.EINVALID / domain.ECONFLICT.
// Item-level sentinels are rewrapped by itemError with a message naming the
// product and variant; errors.Is against the sentinel matches through the wrap.
var (
	ErrCartEmpty          = domain.Errorf(domain.EINVALID, "", "Cart is empty")
	ErrTooManyItems       = domain.Errorf(domain.EINVALID, "", "Cart exceeds maximum item count")
	ErrInvalidQuantity    = domain.Errorf(domain.EINVALID, "", "Quantity must be between 1 and 10000")
	ErrProductUnavailable = domain.Errorf(domain.ENOTFOUND, "", "Product not found or inactive")
	ErrColorOutOfStock    = domain.Errorf(domain.ECONFLICT, "", "Selected color is out of stock")
	ErrSizeOutOfStock     = domain.Errorf(domain.ECONFLICT, "", "Selected size is out of stock")
	ErrInsufficientStock  = domain.Errorf(domain.ECONFLICT, "", "Requested quantity exceeds available stock")
	ErrPriceTampering     = domain.Errorf(domain.EINVALID, "", "Item price below allowed floor")
)

// Checkout errors
var (
	ErrDonationTooLarge  = domain.Errorf(domain.EINVALID, "", "Donation exceeds maximum amount")
	ErrPricingConfig     = domain.Errorf(domain.EINTERNAL, "", "Pricing configuration unavailable")
	ErrOrderNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
	ErrSessionCreation   = domain.Errorf(domain.EPAYMENT, "", "Failed to create payment session")
)

package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Vendor keys for the closed set of print vendors this storefront sells from.
const (
	VendorSinalite      = "sinalite"
	VendorScalablePress = "scalablepress"
	VendorPSRestful     = "psrestful"
)

// Product is an immutable catalog record. Products are created and edited by
// admin tooling; the checkout pipeline only reads them.
type Product struct {
	ID            uuid.UUID
	Name          string
	Vendor        string
	Category      string
	BaseCostCents int64
	IsActive      bool

	// PricingData is an optional vendor-specific blob used for stock and
	// variant validation (apparel color/size availability).
	PricingData *PricingData
}

// PricingData carries vendor-specific variant data stored alongside a product.
type PricingData struct {
	// Stock maps color -> size -> available quantity for apparel products.
	Stock map[string]map[string]int `json:"stock,omitempty"`
}

// StockForColor returns the per-size stock map for a color, matching the
// color key case-insensitively. Returns nil if the color is unknown or no
// stock data is stored.
func (p *PricingData) StockForColor(color string) map[string]int {
	if p == nil || p.Stock == nil {
		return nil
	}
	for key, sizes := range p.Stock {
		if strings.EqualFold(key, color) {
			return sizes
		}
	}
	return nil
}

// ProductStore provides read access to the product catalog.
type ProductStore interface {
	// GetProduct returns a product by id, including inactive products.
	// Callers decide whether inactive products are acceptable.
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

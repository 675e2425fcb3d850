// Package shipping computes order shipping totals from line item categories.
package shipping

import (
	"context"
)

// Item identifies a line item for shipping purposes. Product weight and
// dimensions are not modeled; print vendors quote shipping by product type.
type Item struct {
	ProductName string
	Category    string
	Quantity    int
}

// Calculator computes a shipping total in cents for a set of line items.
type Calculator interface {
	CalculateShipping(ctx context.Context, items []Item) (int64, error)
}

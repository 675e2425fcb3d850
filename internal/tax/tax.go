// Package tax defines the tax calculation seam for checkout.
//
// Tax collection is currently disabled at the payment integration point; the
// calculator interface reserves the code path for enabling it later without
// touching the orchestrator.
package tax

import (
	"context"
)

// Calculator computes tax for an order before the payment session is built.
type Calculator interface {
	CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error)
}

// TaxParams contains the amounts subject to tax.
type TaxParams struct {
	SubtotalCents int64
	ShippingCents int64
	Currency      string
}

// TaxResult is the computed tax amount.
type TaxResult struct {
	TotalTaxCents int64

	// IsEstimate marks amounts not confirmed by a tax provider.
	IsEstimate bool
}

package tax

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// PercentageCalculator applies a single flat tax rate to the taxable total.
// A stand-in for jurisdictions where one combined rate is acceptable.
type PercentageCalculator struct {
	rate         decimal.Decimal
	taxShipping  bool
}

// NewPercentageCalculator creates a calculator with the given rate
// (e.g. 0.065 for 6.5%). Rates outside [0, 1) are rejected.
func NewPercentageCalculator(rate float64, taxShipping bool) (*PercentageCalculator, error) {
	if rate < 0 || rate >= 1 {
		return nil, fmt.Errorf("tax: rate %v out of range [0, 1)", rate)
	}
	return &PercentageCalculator{
		rate:        decimal.NewFromFloat(rate),
		taxShipping: taxShipping,
	}, nil
}

// CalculateTax computes rate × taxable amount, rounded half up to cents.
func (c *PercentageCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	taxable := params.SubtotalCents
	if c.taxShipping {
		taxable += params.ShippingCents
	}

	tax := decimal.NewFromInt(taxable).Mul(c.rate).Round(0).IntPart()
	return &TaxResult{TotalTaxCents: tax, IsEstimate: true}, nil
}

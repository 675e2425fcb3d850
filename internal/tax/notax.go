package tax

import "context"

// NoTaxCalculator returns zero tax for all calculations. This is the active
// calculator while tax collection stays disabled at the payment provider.
type NoTaxCalculator struct{}

// NewNoTaxCalculator creates a no-tax calculator.
func NewNoTaxCalculator() Calculator {
	return &NoTaxCalculator{}
}

// CalculateTax always returns zero tax.
func (c *NoTaxCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	return &TaxResult{TotalTaxCents: 0, IsEstimate: false}, nil
}

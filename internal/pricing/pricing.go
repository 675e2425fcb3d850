// Package pricing computes per-unit markup and nonprofit donation splits.
// The engine is pure arithmetic: no state, no I/O, no error conditions.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/printpower/storefront/internal/domain"
)

// Engine computes price quotes from base vendor costs and global settings.
// Only the configured markup vendor gets a markup; every other vendor's
// quote is the identity (final price equals base cost).
type Engine struct {
	markupVendor string
}

// NewEngine creates an engine that applies markup to the given vendor key.
func NewEngine(markupVendor string) *Engine {
	if markupVendor == "" {
		markupVendor = domain.VendorSinalite
	}
	return &Engine{markupVendor: markupVendor}
}

// Quote computes the per-unit price breakdown for one product.
//
// The donation can never exceed the markup and the house margin can never go
// negative: when a fixed nonprofit share exceeds the markup, the donation
// absorbs the whole markup and the margin clamps to zero.
func (e *Engine) Quote(vendor string, baseCostCents int64, settings domain.PricingSettings) domain.PriceQuote {
	if vendor != e.markupVendor {
		return domain.PriceQuote{
			BaseCostCents:          baseCostCents,
			FinalPricePerUnitCents: baseCostCents,
		}
	}

	var markup int64
	switch settings.MarkupMode {
	case domain.MarkupModePercent:
		markup = roundHalfUpPercent(baseCostCents, settings.MarkupPercent)
	default:
		markup = settings.MarkupFixedCents
	}

	var donation int64
	switch settings.NonprofitShareMode {
	case domain.ShareModePercentOfMarkup:
		donation = roundHalfUpPercent(markup, settings.NonprofitPercentOfMarkup)
	default:
		donation = min(markup, settings.NonprofitFixedCents)
	}

	margin := markup - donation
	if margin < 0 {
		margin = 0
		donation = markup
	}

	return domain.PriceQuote{
		BaseCostCents:          baseCostCents,
		MarkupCents:            markup,
		DonationPerUnitCents:   donation,
		GrossMarginCents:       margin,
		FinalPricePerUnitCents: baseCostCents + markup,
	}
}

// roundHalfUpPercent computes round(amount * percent / 100) with half-up
// rounding at this intermediate step, matching how quoted prices accumulate.
func roundHalfUpPercent(amountCents int64, percent float64) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

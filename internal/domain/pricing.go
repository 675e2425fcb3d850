package domain

import "context"

// Markup mode determines how the per-unit markup is derived from base cost.
type MarkupMode string

const (
	MarkupModeFixed   MarkupMode = "fixed"
	MarkupModePercent MarkupMode = "percent"
)

// NonprofitShareMode determines how the donation portion of markup is derived.
type NonprofitShareMode string

const (
	ShareModeFixed           NonprofitShareMode = "fixed"
	ShareModePercentOfMarkup NonprofitShareMode = "percent_of_markup"
)

// PricingSettings holds the global, admin-editable pricing configuration for
// one vendor key. Exactly one field per axis governs the calculation; the
// numeric field for the inactive mode is ignored, not zeroed.
type PricingSettings struct {
	Vendor                   string
	MarkupMode               MarkupMode
	MarkupFixedCents         int64
	MarkupPercent            float64
	NonprofitShareMode       NonprofitShareMode
	NonprofitFixedCents      int64
	NonprofitPercentOfMarkup float64
	Currency                 string
}

// PriceQuote is the output of the pricing engine for a single unit.
type PriceQuote struct {
	BaseCostCents          int64
	MarkupCents            int64
	DonationPerUnitCents   int64
	GrossMarginCents       int64
	FinalPricePerUnitCents int64
}

// SettingsStore provides access to persisted global configuration.
type SettingsStore interface {
	// GetPricingSettings returns the pricing settings for a vendor key.
	// Missing settings are a configuration error, not a default.
	GetPricingSettings(ctx context.Context, vendor string) (*PricingSettings, error)

	// GetSetting returns a global key/value setting (e.g. "payment_mode").
	GetSetting(ctx context.Context, key string) (string, error)
}

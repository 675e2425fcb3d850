package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/printpower/storefront/internal/domain"
)

// Compile-time check that Store implements domain.SettingsStore.
var _ domain.SettingsStore = (*Store)(nil)

// GetPricingSettings loads the global pricing settings row for a vendor.
func (s *Store) GetPricingSettings(ctx context.Context, vendor string) (*domain.PricingSettings, error) {
	const query = `
		SELECT vendor, markup_mode, markup_fixed_cents, markup_percent,
		       nonprofit_share_mode, nonprofit_fixed_cents, nonprofit_percent_of_markup,
		       currency
		FROM pricing_settings
		WHERE vendor = $1`

	var ps domain.PricingSettings
	err := s.pool.QueryRow(ctx, query, vendor).Scan(
		&ps.Vendor, &ps.MarkupMode, &ps.MarkupFixedCents, &ps.MarkupPercent,
		&ps.NonprofitShareMode, &ps.NonprofitFixedCents, &ps.NonprofitPercentOfMarkup,
		&ps.Currency,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("settings.get_pricing", "pricing settings", vendor)
		}
		return nil, domain.Internal(err, "settings.get_pricing", "failed to load pricing settings")
	}
	return &ps, nil
}

// GetSetting returns the value of a key in the settings table, or empty
// string when the key is absent.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM settings WHERE key = $1`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", domain.Internal(err, "settings.get", "failed to load setting")
	}
	return value, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/printpower/storefront/internal/domain"
)

// Compile-time check that Store implements domain.ProductStore.
var _ domain.ProductStore = (*Store)(nil)

// GetProduct retrieves a product by id, including inactive products; the
// caller decides whether inactive is an error.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	const query = `
		SELECT id, name, vendor, category, base_cost_cents, is_active, pricing_data
		FROM products
		WHERE id = $1`

	var (
		p           domain.Product
		pricingData []byte
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Vendor, &p.Category, &p.BaseCostCents, &p.IsActive, &pricingData,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("product.get", "product", id.String())
		}
		return nil, domain.Internal(err, "product.get", "failed to get product")
	}

	if len(pricingData) > 0 {
		var pd domain.PricingData
		if err := json.Unmarshal(pricingData, &pd); err != nil {
			return nil, domain.Internal(err, "product.get", "failed to decode pricing data")
		}
		p.PricingData = &pd
	}

	return &p, nil
}

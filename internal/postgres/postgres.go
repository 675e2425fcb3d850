// Package postgres implements the domain store interfaces on pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides PostgreSQL-backed persistence for the checkout pipeline.
// It implements domain.ProductStore, domain.OrderStore, domain.DonationStore,
// domain.SettingsStore, domain.PolicyStore, and domain.WebhookEventStore.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store on an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}

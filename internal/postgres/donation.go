package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/printpower/storefront/internal/domain"
)

var (
	_ domain.DonationStore     = (*Store)(nil)
	_ domain.PolicyStore       = (*Store)(nil)
	_ domain.WebhookEventStore = (*Store)(nil)
)

// GetNonprofit retrieves a nonprofit by id.
func (s *Store) GetNonprofit(ctx context.Context, id uuid.UUID) (*domain.Nonprofit, error) {
	const query = `SELECT id, name, ein, cause_id FROM nonprofits WHERE id = $1`

	var n domain.Nonprofit
	err := s.pool.QueryRow(ctx, query, id).Scan(&n.ID, &n.Name, &n.EIN, &n.CauseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("nonprofit.get", "nonprofit", id.String())
		}
		return nil, domain.Internal(err, "nonprofit.get", "failed to get nonprofit")
	}
	return &n, nil
}

// GetCause retrieves a cause by id.
func (s *Store) GetCause(ctx context.Context, id uuid.UUID) (*domain.Cause, error) {
	const query = `SELECT id, name, goal_cents, raised_cents FROM causes WHERE id = $1`

	var c domain.Cause
	err := s.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.GoalCents, &c.RaisedCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("cause.get", "cause", id.String())
		}
		return nil, domain.Internal(err, "cause.get", "failed to get cause")
	}
	return &c, nil
}

// CreateDonation records the nonprofit portion of a completed order.
func (s *Store) CreateDonation(ctx context.Context, donation *domain.Donation) error {
	const query = `
		INSERT INTO donations (id, order_id, cause_id, amount_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		donation.ID, donation.OrderID, donation.CauseID, donation.AmountCents,
	).Scan(&donation.CreatedAt)
	if err != nil {
		return domain.Internal(err, "donation.create", "failed to save donation")
	}
	return nil
}

// IncrementCauseRaised adds amountCents to the cause's raised total with a
// single server-side increment. Safe under concurrent webhook delivery.
func (s *Store) IncrementCauseRaised(ctx context.Context, causeID uuid.UUID, amountCents int64) error {
	const query = `UPDATE causes SET raised_cents = raised_cents + $2 WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, causeID, amountCents)
	if err != nil {
		return domain.Internal(err, "cause.increment_raised", "failed to increment cause total")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("cause.increment_raised", "cause", causeID.String())
	}
	return nil
}

// RecordPolicyAcceptance logs a policy version accepted at checkout.
func (s *Store) RecordPolicyAcceptance(ctx context.Context, acceptance *domain.PolicyAcceptance) error {
	const query = `
		INSERT INTO policy_acceptances (id, order_id, email, policy_type, version)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING accepted_at`

	err := s.pool.QueryRow(ctx, query,
		acceptance.ID, acceptance.OrderID, acceptance.Email, acceptance.PolicyType, acceptance.Version,
	).Scan(&acceptance.AcceptedAt)
	if err != nil {
		return domain.Internal(err, "policy.record_acceptance", "failed to save policy acceptance")
	}
	return nil
}

// MarkEventProcessed records a webhook event id and reports whether this is
// the first delivery. The insert-or-nothing form makes the check atomic.
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	const query = `
		INSERT INTO webhook_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query, eventID, eventType)
	if err != nil {
		return false, domain.Internal(err, "webhook.mark_processed", "failed to record webhook event")
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseEvent deletes a webhook event id recorded by MarkEventProcessed.
// Called after a failed finalization so the provider's retry of the same
// event is not classified as a duplicate.
func (s *Store) ReleaseEvent(ctx context.Context, eventID string) error {
	const query = `DELETE FROM webhook_events WHERE event_id = $1`

	if _, err := s.pool.Exec(ctx, query, eventID); err != nil {
		return domain.Internal(err, "webhook.release_event", "failed to release webhook event")
	}
	return nil
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Nonprofit is a donor-selectable organization shown at checkout.
type Nonprofit struct {
	ID   uuid.UUID
	Name string
	EIN  string

	// CauseID links the nonprofit to its fundraising cause, when one exists.
	CauseID *uuid.UUID
}

// Cause is a long-lived fundraising aggregate. RaisedCents only moves through
// the atomic increment on DonationStore, never a read-modify-write.
type Cause struct {
	ID          uuid.UUID
	Name        string
	GoalCents   int64
	RaisedCents int64
}

// Donation records the nonprofit portion of one completed order. Immutable
// once written.
type Donation struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	CauseID     uuid.UUID
	AmountCents int64
	CreatedAt   time.Time
}

// PolicyAcceptance logs the legal policy version a customer accepted at
// checkout, recorded when the payment webhook carries version metadata.
type PolicyAcceptance struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Email      string
	PolicyType string // "terms" or "privacy"
	Version    string
	AcceptedAt time.Time
}

// DonationStore persists donations and cause totals.
type DonationStore interface {
	GetNonprofit(ctx context.Context, id uuid.UUID) (*Nonprofit, error)
	GetCause(ctx context.Context, id uuid.UUID) (*Cause, error)

	CreateDonation(ctx context.Context, donation *Donation) error

	// IncrementCauseRaised adds amountCents to the cause's raised total as a
	// single server-side increment, safe under concurrent webhook delivery.
	IncrementCauseRaised(ctx context.Context, causeID uuid.UUID, amountCents int64) error
}

// PolicyStore records policy acceptances.
type PolicyStore interface {
	RecordPolicyAcceptance(ctx context.Context, acceptance *PolicyAcceptance) error
}

// WebhookEventStore deduplicates provider webhook events. Payment providers
// deliver at least once; side effects must run at most once per event id.
type WebhookEventStore interface {
	// MarkEventProcessed records the event id and returns true if this is the
	// first delivery. A false return means the event was already processed
	// and all side effects must be skipped.
	MarkEventProcessed(ctx context.Context, eventID, eventType string) (bool, error)

	// ReleaseEvent forgets a recorded event id so the provider's retry of the
	// same event counts as a first delivery again. Called when processing
	// failed after the id was recorded.
	ReleaseEvent(ctx context.Context, eventID string) error
}

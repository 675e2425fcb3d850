package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printpower/storefront/internal/billing"
	"github.com/printpower/storefront/internal/domain"
	"github.com/printpower/storefront/internal/email"
)

type paymentFixture struct {
	payments   *Payments
	orders     *mockOrderStore
	donations  *mockDonationStore
	policies   *mockPolicyStore
	events     *mockEventStore
	dispatcher *mockDispatcher
	sender     *email.MockSender

	finalized []domain.FinalizeOrderParams
	inserted  []*domain.Order
	donated   []*domain.Donation
	raised    map[uuid.UUID]int64
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		policies:   &mockPolicyStore{},
		events:     &mockEventStore{},
		dispatcher: &mockDispatcher{},
		sender:     email.NewMockSender(),
		raised:     map[uuid.UUID]int64{},
	}

	f.orders = &mockOrderStore{
		FinalizeOrderFunc: func(ctx context.Context, params domain.FinalizeOrderParams) (*domain.Order, error) {
			f.finalized = append(f.finalized, params)
			return &domain.Order{
				ID:            params.OrderID,
				OrderNumber:   "PPP-1042",
				Status:        domain.OrderStatusCompleted,
				SessionID:     params.SessionID,
				CustomerEmail: params.CustomerEmail,
				TotalCents:    params.AmountTotal,
				DonationCents: params.DonationCents,
				NonprofitID:   params.NonprofitID,
				NonprofitName: params.NonprofitName,
				CauseID:       params.CauseID,
			}, nil
		},
		InsertCompletedOrderFunc: func(ctx context.Context, order *domain.Order) error {
			f.inserted = append(f.inserted, order)
			return nil
		},
	}

	f.donations = &mockDonationStore{
		CreateDonationFunc: func(ctx context.Context, donation *domain.Donation) error {
			f.donated = append(f.donated, donation)
			return nil
		},
		IncrementCauseRaisedFunc: func(ctx context.Context, causeID uuid.UUID, amountCents int64) error {
			f.raised[causeID] += amountCents
			return nil
		},
	}

	f.payments = NewPayments(
		f.orders,
		f.donations,
		f.policies,
		f.events,
		email.NewService(f.sender, "orders@printpowerpurpose.com", "Print Power Purpose"),
		f.dispatcher,
		nil,
	)
	return f
}

func completedSession(orderID uuid.UUID) *billing.CheckoutSession {
	return &billing.CheckoutSession{
		ID:               "cs_complete_1",
		Status:           "complete",
		PaymentIntentID:  "pi_1",
		CustomerEmail:    "buyer@example.com",
		AmountTotalCents: 6900,
		Currency:         "usd",
		Metadata: map[string]string{
			"order_id":       orderID.String(),
			"order_number":   "PPP-1042",
			"donation_cents": "500",
			"shipping_cents": "900",
		},
	}
}

func TestPayments_HandleSessionCompleted(t *testing.T) {
	f := newPaymentFixture()
	orderID := uuid.New()

	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", completedSession(orderID))
	require.NoError(t, err)

	require.Len(t, f.finalized, 1)
	params := f.finalized[0]
	assert.Equal(t, orderID, params.OrderID)
	assert.Equal(t, "cs_complete_1", params.SessionID)
	assert.Equal(t, "pi_1", params.PaymentIntentID)
	assert.Equal(t, "buyer@example.com", params.CustomerEmail)
	assert.Equal(t, int64(6900), params.AmountTotal)
	assert.Equal(t, int64(500), params.DonationCents)
	assert.False(t, params.PaidAt.IsZero())

	assert.Empty(t, f.inserted, "finalized orders must not be inserted again")
	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, "PPP-1042", f.dispatcher.dispatched[0].OrderNumber)
	assert.Equal(t, 1, f.sender.SentCount())
}

func TestPayments_DuplicateEventSkipped(t *testing.T) {
	f := newPaymentFixture()
	f.events.MarkEventProcessedFunc = func(ctx context.Context, eventID, eventType string) (bool, error) {
		return false, nil
	}

	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", completedSession(uuid.New()))
	require.NoError(t, err)

	assert.Empty(t, f.finalized)
	assert.Empty(t, f.dispatcher.dispatched)
	assert.Zero(t, f.sender.SentCount())
}

func TestPayments_EventStoreFailurePropagates(t *testing.T) {
	f := newPaymentFixture()
	f.events.MarkEventProcessedFunc = func(ctx context.Context, eventID, eventType string) (bool, error) {
		return false, errors.New("connection refused")
	}

	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", completedSession(uuid.New()))
	assert.Error(t, err)
	assert.Empty(t, f.finalized)
}

func TestPayments_FinalizeFailurePropagates(t *testing.T) {
	f := newPaymentFixture()
	f.orders.FinalizeOrderFunc = func(ctx context.Context, params domain.FinalizeOrderParams) (*domain.Order, error) {
		return nil, domain.Internal(errors.New("deadlock"), "order.finalize", "update failed")
	}

	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", completedSession(uuid.New()))
	assert.Error(t, err)
	assert.Empty(t, f.dispatcher.dispatched)
	assert.Zero(t, f.sender.SentCount())
	assert.Equal(t, []string{"evt_1"}, f.events.released,
		"a failed finalization must release the event id for the provider's retry")
}

func TestPayments_FinalizeFailureAllowsRetry(t *testing.T) {
	f := newPaymentFixture()

	// Stateful dedupe: the retry only counts as a first delivery if the
	// failed attempt released its event id.
	seen := map[string]bool{}
	f.events.MarkEventProcessedFunc = func(ctx context.Context, eventID, eventType string) (bool, error) {
		if seen[eventID] {
			return false, nil
		}
		seen[eventID] = true
		return true, nil
	}
	f.events.ReleaseEventFunc = func(ctx context.Context, eventID string) error {
		delete(seen, eventID)
		return nil
	}

	finalize := f.orders.FinalizeOrderFunc
	f.orders.FinalizeOrderFunc = func(ctx context.Context, params domain.FinalizeOrderParams) (*domain.Order, error) {
		return nil, domain.Internal(errors.New("connection reset"), "order.finalize", "update failed")
	}

	orderID := uuid.New()
	err := f.payments.HandleSessionCompleted(context.Background(), "evt_retry", completedSession(orderID))
	require.Error(t, err)
	require.Empty(t, f.finalized)

	// The database recovers and the provider redelivers the same event.
	f.orders.FinalizeOrderFunc = finalize
	err = f.payments.HandleSessionCompleted(context.Background(), "evt_retry", completedSession(orderID))
	require.NoError(t, err)

	require.Len(t, f.finalized, 1)
	assert.Equal(t, orderID, f.finalized[0].OrderID)
	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, 1, f.sender.SentCount())
}

func TestPayments_LegacySessionInsertsCompletedOrder(t *testing.T) {
	f := newPaymentFixture()
	f.orders.FinalizeOrderFunc = func(ctx context.Context, params domain.FinalizeOrderParams) (*domain.Order, error) {
		return nil, domain.NotFound("order.finalize", "order", params.OrderID.String())
	}

	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", completedSession(uuid.New()))
	require.NoError(t, err)

	require.Len(t, f.inserted, 1)
	order := f.inserted[0]
	assert.Equal(t, "PPP-1042", order.OrderNumber)
	assert.Equal(t, "cs_complete_1", order.SessionID)
	assert.Equal(t, int64(6900), order.TotalCents)
	assert.Equal(t, int64(900), order.ShippingCents)
	assert.Equal(t, int64(500), order.DonationCents)
	require.NotNil(t, order.PaidAt)
	require.Len(t, f.dispatcher.dispatched, 1)
}

func TestPayments_LegacySessionWithoutMetadata(t *testing.T) {
	f := newPaymentFixture()

	session := &billing.CheckoutSession{
		ID:               "cs_legacy_9",
		Status:           "complete",
		CustomerEmail:    "buyer@example.com",
		AmountTotalCents: 2500,
		Currency:         "usd",
	}
	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", session)
	require.NoError(t, err)

	assert.Empty(t, f.finalized, "no order_id in metadata means no finalize attempt")
	require.Len(t, f.inserted, 1)
	assert.Equal(t, "PPP-cs_legacy_9", f.inserted[0].OrderNumber)
}

func TestPayments_DonationRecorded(t *testing.T) {
	f := newPaymentFixture()
	causeID := uuid.New()

	session := completedSession(uuid.New())
	session.Metadata["cause_id"] = causeID.String()

	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", session)
	require.NoError(t, err)

	require.Len(t, f.donated, 1)
	assert.Equal(t, causeID, f.donated[0].CauseID)
	assert.Equal(t, int64(500), f.donated[0].AmountCents)
	assert.Equal(t, int64(500), f.raised[causeID])
}

func TestPayments_NoDonationWithoutCause(t *testing.T) {
	f := newPaymentFixture()

	// Donation amount present but no cause selected.
	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", completedSession(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, f.donated)
}

func TestPayments_PolicyAcceptancesRecorded(t *testing.T) {
	f := newPaymentFixture()

	session := completedSession(uuid.New())
	session.Metadata["terms_version"] = "2026-01"
	session.Metadata["privacy_version"] = "2025-11"

	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", session)
	require.NoError(t, err)

	require.Len(t, f.policies.recorded, 2)
	byType := map[string]string{}
	for _, acc := range f.policies.recorded {
		byType[acc.PolicyType] = acc.Version
		assert.Equal(t, "buyer@example.com", acc.Email)
	}
	assert.Equal(t, "2026-01", byType["terms"])
	assert.Equal(t, "2025-11", byType["privacy"])
}

func TestPayments_SideEffectFailuresIsolated(t *testing.T) {
	f := newPaymentFixture()
	causeID := uuid.New()

	f.policies.RecordPolicyAcceptanceFunc = func(ctx context.Context, acceptance *domain.PolicyAcceptance) error {
		return errors.New("constraint violation")
	}
	f.donations.CreateDonationFunc = func(ctx context.Context, donation *domain.Donation) error {
		return errors.New("connection reset")
	}
	f.sender.SendFunc = func(ctx context.Context, e *email.Email) (string, error) {
		return "", errors.New("smtp down")
	}

	session := completedSession(uuid.New())
	session.Metadata["cause_id"] = causeID.String()
	session.Metadata["terms_version"] = "2026-01"

	err := f.payments.HandleSessionCompleted(context.Background(), "evt_1", session)
	require.NoError(t, err, "side effect failures must not fail the webhook")

	// Donation insert failed, so the cause total must not move.
	assert.Zero(t, f.raised[causeID])
	// Fulfillment still runs.
	require.Len(t, f.dispatcher.dispatched, 1)
}

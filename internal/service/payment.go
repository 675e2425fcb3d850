package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/printpower/storefront/internal/billing"
	"github.com/printpower/storefront/internal/domain"
	"github.com/printpower/storefront/internal/email"
)

// Payments finalizes orders from verified payment events and runs the
// follow-up side effects. Each side effect is isolated: one failing
// integration never blocks another or the webhook acknowledgment.
type Payments struct {
	orders     domain.OrderStore
	donations  domain.DonationStore
	policies   domain.PolicyStore
	events     domain.WebhookEventStore
	emails     *email.Service
	dispatcher domain.FulfillmentDispatcher
	logger     *slog.Logger
}

// NewPayments creates the payment completion service.
func NewPayments(
	orders domain.OrderStore,
	donations domain.DonationStore,
	policies domain.PolicyStore,
	events domain.WebhookEventStore,
	emails *email.Service,
	dispatcher domain.FulfillmentDispatcher,
	logger *slog.Logger,
) *Payments {
	if logger == nil {
		logger = slog.Default()
	}
	return &Payments{
		orders:     orders,
		donations:  donations,
		policies:   policies,
		events:     events,
		emails:     emails,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleSessionCompleted processes a verified checkout-session-completed
// event. Payment providers deliver at least once, so the event id is checked
// against the processed-event table before any side effect runs.
//
// An error return means the order could not be finalized at all; the event id
// is released so the provider's retry gets another attempt. Side-effect
// failures are logged and swallowed.
func (p *Payments) HandleSessionCompleted(ctx context.Context, eventID string, session *billing.CheckoutSession) error {
	first, err := p.events.MarkEventProcessed(ctx, eventID, "checkout.session.completed")
	if err != nil {
		return err
	}
	if !first {
		p.logger.Info("duplicate webhook event skipped",
			slog.String("event_id", eventID),
			slog.String("session_id", session.ID))
		return nil
	}

	order, err := p.finalizeOrder(ctx, session)
	if err != nil {
		// Release the event id, otherwise the retry would be classified as a
		// duplicate and the order stay unfinalized forever.
		if releaseErr := p.events.ReleaseEvent(ctx, eventID); releaseErr != nil {
			p.logger.Error("failed to release webhook event after finalize failure",
				slog.String("event_id", eventID),
				slog.String("error", releaseErr.Error()))
		}
		return err
	}

	p.logger.Info("order completed",
		slog.String("order_number", order.OrderNumber),
		slog.String("session_id", session.ID),
		slog.Int64("total_cents", order.TotalCents))

	p.recordPolicyAcceptances(ctx, order, session.Metadata)
	p.recordDonation(ctx, order)
	p.sendConfirmation(ctx, order)
	p.dispatcher.Dispatch(ctx, order)

	return nil
}

// finalizeOrder updates the provisional order named in session metadata, or
// inserts a completed order directly when no provisional row exists (legacy
// sessions created before provisional orders).
func (p *Payments) finalizeOrder(ctx context.Context, session *billing.CheckoutSession) (*domain.Order, error) {
	now := time.Now()
	meta := session.Metadata

	orderID, parseErr := uuid.Parse(meta["order_id"])
	if parseErr == nil {
		params := domain.FinalizeOrderParams{
			OrderID:         orderID,
			SessionID:       session.ID,
			PaymentIntentID: session.PaymentIntentID,
			ReceiptURL:      session.ReceiptURL,
			CustomerEmail:   session.CustomerEmail,
			AmountTotal:     session.AmountTotalCents,
			DonationCents:   metaInt(meta, "donation_cents"),
			NonprofitName:   meta["nonprofit_name"],
			NonprofitEIN:    meta["nonprofit_ein"],
			PaidAt:          now,
		}
		if id, err := uuid.Parse(meta["nonprofit_id"]); err == nil {
			params.NonprofitID = &id
		}
		if id, err := uuid.Parse(meta["cause_id"]); err == nil {
			params.CauseID = &id
		}

		order, err := p.orders.FinalizeOrder(ctx, params)
		if err == nil {
			return order, nil
		}
		if !domain.IsCode(err, domain.ENOTFOUND) {
			return nil, err
		}
	}

	// Legacy flow: no provisional order to update.
	order := &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     meta["order_number"],
		SessionID:       session.ID,
		PaymentIntentID: session.PaymentIntentID,
		ReceiptURL:      session.ReceiptURL,
		CustomerEmail:   session.CustomerEmail,
		TotalCents:      session.AmountTotalCents,
		ShippingCents:   metaInt(meta, "shipping_cents"),
		DonationCents:   metaInt(meta, "donation_cents"),
		Currency:        session.Currency,
		NonprofitName:   meta["nonprofit_name"],
		NonprofitEIN:    meta["nonprofit_ein"],
		PaidAt:          &now,
	}
	if order.OrderNumber == "" {
		order.OrderNumber = "PPP-" + session.ID
	}
	if id, err := uuid.Parse(meta["nonprofit_id"]); err == nil {
		order.NonprofitID = &id
	}
	if id, err := uuid.Parse(meta["cause_id"]); err == nil {
		order.CauseID = &id
	}
	if err := p.orders.InsertCompletedOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (p *Payments) recordPolicyAcceptances(ctx context.Context, order *domain.Order, meta map[string]string) {
	for policyType, key := range map[string]string{"terms": "terms_version", "privacy": "privacy_version"} {
		version := meta[key]
		if version == "" {
			continue
		}
		acceptance := &domain.PolicyAcceptance{
			ID:         uuid.New(),
			OrderID:    order.ID,
			Email:      order.CustomerEmail,
			PolicyType: policyType,
			Version:    version,
		}
		if err := p.policies.RecordPolicyAcceptance(ctx, acceptance); err != nil {
			p.logger.Error("failed to record policy acceptance",
				slog.String("order_number", order.OrderNumber),
				slog.String("policy_type", policyType),
				slog.String("error", err.Error()))
		}
	}
}

// recordDonation inserts the donation row and bumps the cause total. The
// increment is a single server-side operation, safe under concurrent
// deliveries for the same cause.
func (p *Payments) recordDonation(ctx context.Context, order *domain.Order) {
	if order.DonationCents <= 0 || order.CauseID == nil {
		return
	}

	donation := &domain.Donation{
		ID:          uuid.New(),
		OrderID:     order.ID,
		CauseID:     *order.CauseID,
		AmountCents: order.DonationCents,
	}
	if err := p.donations.CreateDonation(ctx, donation); err != nil {
		p.logger.Error("failed to record donation",
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()))
		return
	}
	if err := p.donations.IncrementCauseRaised(ctx, *order.CauseID, order.DonationCents); err != nil {
		p.logger.Error("failed to increment cause total",
			slog.String("order_number", order.OrderNumber),
			slog.String("cause_id", order.CauseID.String()),
			slog.String("error", err.Error()))
	}
}

func (p *Payments) sendConfirmation(ctx context.Context, order *domain.Order) {
	if order.CustomerEmail == "" {
		return
	}

	confirmation := email.OrderConfirmationEmail{
		OrderNumber:   order.OrderNumber,
		CustomerEmail: order.CustomerEmail,
		OrderDate:     time.Now(),
		Items:         emailItems(order),
		SubtotalCents: order.SubtotalCents,
		ShippingCents: order.ShippingCents,
		TaxCents:      order.TaxCents,
		DonationCents: order.DonationCents,
		TotalCents:    order.TotalCents,
		NonprofitName: order.NonprofitName,
		ReceiptURL:    order.ReceiptURL,
	}
	if err := p.emails.SendOrderConfirmation(ctx, confirmation); err != nil {
		p.logger.Error("failed to send order confirmation",
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()))
	}
}

func metaInt(meta map[string]string, key string) int64 {
	n, err := strconv.ParseInt(meta[key], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

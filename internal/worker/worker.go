// Package worker runs the background tracking poller.
//
// Orders submitted to a vendor API do not report shipment immediately;
// the poller periodically asks each vendor for tracking updates and
// persists whatever comes back.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/printpower/storefront/internal/domain"
	"github.com/printpower/storefront/internal/telemetry"
)

// Config holds tracking poller configuration
type Config struct {
	// PollInterval is how often to sweep submitted orders.
	PollInterval time.Duration

	// BatchSize is the maximum number of orders refreshed per sweep.
	BatchSize int
}

// TrackingPoller periodically refreshes tracking info for orders that
// have been submitted to a vendor.
type TrackingPoller struct {
	config     Config
	orders     domain.OrderStore
	dispatcher domain.FulfillmentDispatcher
	logger     *slog.Logger
}

// NewTrackingPoller creates a new tracking poller
func NewTrackingPoller(
	orders domain.OrderStore,
	dispatcher domain.FulfillmentDispatcher,
	config Config,
	logger *slog.Logger,
) *TrackingPoller {
	if config.PollInterval == 0 {
		config.PollInterval = 15 * time.Minute
	}
	if config.BatchSize == 0 {
		config.BatchSize = 50
	}

	return &TrackingPoller{
		config:     config,
		orders:     orders,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the polling loop until the context is cancelled.
func (p *TrackingPoller) Start(ctx context.Context) error {
	p.logger.Info("tracking poller starting",
		slog.Duration("poll_interval", p.config.PollInterval),
		slog.Int("batch_size", p.config.BatchSize),
	)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("tracking poller shutting down")
			return ctx.Err()
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

// sweep refreshes tracking for one batch of submitted orders.
// Per-order failures are logged and skipped; one broken vendor must
// not stall the rest of the batch.
func (p *TrackingPoller) sweep(ctx context.Context) {
	orders, err := p.orders.ListOrdersByVendorStatus(ctx, domain.VendorStatusSubmitted, p.config.BatchSize)
	if err != nil {
		p.logger.Error("tracking sweep: list orders failed", slog.String("error", err.Error()))
		return
	}
	if len(orders) == 0 {
		return
	}

	updated := 0
	for i := range orders {
		order := &orders[i]

		if err := p.dispatcher.RefreshTracking(ctx, order); err != nil {
			p.logger.Warn("tracking refresh failed",
				slog.String("order_number", order.OrderNumber),
				slog.String("error", err.Error()),
			)
			if telemetry.Business != nil {
				telemetry.Business.TrackingRefreshes.WithLabelValues("error").Inc()
			}
			continue
		}

		outcome := "empty"
		if order.TrackingNumber != "" {
			outcome = "updated"
			updated++
		}
		if telemetry.Business != nil {
			telemetry.Business.TrackingRefreshes.WithLabelValues(outcome).Inc()
		}
	}

	p.logger.Info("tracking sweep complete",
		slog.Int("checked", len(orders)),
		slog.Int("updated", updated),
	)
}

package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/printpower/storefront/internal/billing"
	"github.com/printpower/storefront/internal/telemetry"
)

// maxPayloadBytes bounds the webhook body read. Stripe events are small;
// anything larger is not a legitimate event.
const maxPayloadBytes = 1 << 20

// PaymentCompleter finalizes an order from a verified checkout session.
type PaymentCompleter interface {
	HandleSessionCompleted(ctx context.Context, eventID string, session *billing.CheckoutSession) error
}

// StripeHandler handles Stripe webhook events
type StripeHandler struct {
	provider billing.Provider
	payments PaymentCompleter
	config   StripeWebhookConfig
	logger   *slog.Logger
}

// StripeWebhookConfig contains configuration for Stripe webhook handling
type StripeWebhookConfig struct {
	// WebhookSecret is the webhook signing secret from the Stripe dashboard.
	// An empty secret rejects every delivery; there is no unverified mode.
	WebhookSecret string
}

// NewStripeHandler creates a new Stripe webhook handler
func NewStripeHandler(provider billing.Provider, payments PaymentCompleter, config StripeWebhookConfig, logger *slog.Logger) *StripeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeHandler{
		provider: provider,
		payments: payments,
		config:   config,
		logger:   logger,
	}
}

// HandleWebhook processes incoming Stripe webhook events.
//
// Stripe delivers at least once and retries on non-2xx. The contract here:
// 400 before verification (missing header, unconfigured secret, bad
// signature), 400 with code WEBHOOK_ERROR when order finalization fails
// after verification, and 200 {"received": true} otherwise.
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	if r.Method != http.MethodPost {
		h.reject(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.reject(w, http.StatusBadRequest, "Error reading request body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		h.logger.Warn("webhook missing signature header")
		h.reject(w, http.StatusBadRequest, "Missing signature")
		return
	}
	if h.config.WebhookSecret == "" {
		h.logger.Error("webhook secret not configured, rejecting delivery")
		h.reject(w, http.StatusBadRequest, "Webhook secret not configured")
		return
	}

	if err := h.provider.VerifyWebhookSignature(payload, signature, h.config.WebhookSecret); err != nil {
		h.logger.Warn("webhook signature verification failed", slog.String("error", err.Error()))
		h.reject(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Warn("webhook payload is not valid JSON", slog.String("error", err.Error()))
		h.reject(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	eventType := string(event.Type)
	h.logger.Info("stripe webhook received",
		slog.String("event_type", eventType),
		slog.String("event_id", event.ID))

	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(eventType).Inc()
	}
	defer func() {
		if telemetry.Business != nil {
			telemetry.Business.WebhookLatency.WithLabelValues(eventType).Observe(time.Since(startTime).Seconds())
		}
	}()

	switch event.Type {
	case "checkout.session.completed":
		if err := h.handleSessionCompleted(r.Context(), event); err != nil {
			h.logger.Error("webhook processing failed",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()))
			if telemetry.Business != nil {
				telemetry.Business.WebhookFailed.WithLabelValues(eventType, "processing").Inc()
			}
			telemetry.CaptureError(err, map[string]interface{}{
				"event_id":   event.ID,
				"event_type": eventType,
			})

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": err.Error(),
				"code":  "WEBHOOK_ERROR",
			})
			return
		}
		if telemetry.Business != nil {
			telemetry.Business.WebhookProcessed.WithLabelValues(eventType).Inc()
		}

	case "checkout.session.expired":
		// Abandoned checkout. The provisional order stays in state created;
		// nothing to do.
		h.logger.Info("checkout session expired", slog.String("event_id", event.ID))

	default:
		h.logger.Info("unhandled webhook event type", slog.String("event_type", eventType))
	}

	// Acknowledge receipt; Stripe retries on any other status.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received": true}`))
}

func (h *StripeHandler) handleSessionCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return err
	}

	session := billing.SessionFromStripe(&sess)
	if err := h.payments.HandleSessionCompleted(ctx, event.ID, session); err != nil {
		return err
	}

	if telemetry.Business != nil {
		if cents, err := strconv.ParseInt(session.Metadata["donation_cents"], 10, 64); err == nil && cents > 0 {
			telemetry.Business.DonationsRecorded.Inc()
			telemetry.Business.DonationAmount.Add(float64(cents))
		}
	}
	return nil
}

func (h *StripeHandler) reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package storefront

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/printpower/storefront/internal/domain"
	"github.com/printpower/storefront/internal/telemetry"
)

// CheckoutHandler handles checkout session creation for the storefront.
type CheckoutHandler struct {
	checkout domain.CheckoutService
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout domain.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// CreateSession handles POST /api/checkout/session.
//
// The storefront client expects a flat {"error": string} body on failure,
// always with status 500; the rate limiter answers 429 before this handler
// runs. Field-level detail stays in the message text.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, domain.Invalid("checkout.create", "invalid request body"))
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutStarted.WithLabelValues("api").Inc()
	}

	resp, err := h.checkout.CreateSession(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutCompleted.Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *CheckoutHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)

	h.logger.Error("checkout failed",
		slog.String("code", code),
		slog.String("error", err.Error()))
	if telemetry.Business != nil {
		telemetry.Business.CheckoutFailed.WithLabelValues(code).Inc()
	}
	if code == domain.EINTERNAL {
		telemetry.CaptureErrorFromContext(r.Context(), err, map[string]interface{}{
			"path": r.URL.Path,
		})
	}

	message := domain.ErrorMessage(err)
	if code == domain.EINTERNAL {
		message = "Checkout is temporarily unavailable. Please try again."
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

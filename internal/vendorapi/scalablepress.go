package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/printpower/storefront/internal/domain"
)

const scalablePressBaseURL = "https://api.scalablepress.com/v2"

// ScalablePressAdapter submits apparel orders to the Scalable Press API.
// Authentication is HTTP basic with the API key as the password.
type ScalablePressAdapter struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	// overridable in tests
	apiBaseURL string
}

func (a *ScalablePressAdapter) baseURL() string {
	if a.apiBaseURL != "" {
		return a.apiBaseURL
	}
	return scalablePressBaseURL
}

// NewScalablePressAdapter creates a Scalable Press adapter.
func NewScalablePressAdapter(apiKey string, logger *slog.Logger) *ScalablePressAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScalablePressAdapter{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (a *ScalablePressAdapter) Key() string  { return domain.VendorScalablePress }
func (a *ScalablePressAdapter) Name() string { return "Scalable Press" }

// SubmitOrder submits the order's Scalable Press line items.
//
// Scalable Press expects a quote-then-order flow; this adapter submits the
// order directly with item products keyed by product id, color, and size from
// the configuration captured at checkout.
func (a *ScalablePressAdapter) SubmitOrder(ctx context.Context, order *domain.Order) (*SubmitResult, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("scalablepress: API key not configured")
	}

	type spProduct struct {
		ID    string `json:"id"`
		Color string `json:"color,omitempty"`
		Size  string `json:"size,omitempty"`
	}
	type spItem struct {
		Type     string    `json:"type"`
		Product  spProduct `json:"product"`
		Design   string    `json:"design,omitempty"`
		Quantity int64     `json:"quantity"`
	}

	items := make([]spItem, 0, len(order.Items))
	for _, item := range order.Items {
		if item.Vendor != domain.VendorScalablePress {
			continue
		}
		items = append(items, spItem{
			Type: item.Category,
			Product: spProduct{
				ID:    item.ProductID.String(),
				Color: item.Configuration["color"],
				Size:  item.Configuration["size"],
			},
			Design:   item.ArtworkURL,
			Quantity: int64(item.Quantity),
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("scalablepress: order %s has no scalablepress items", order.OrderNumber)
	}

	payload := map[string]any{
		"type":  "order",
		"name":  order.OrderNumber,
		"items": items,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL()+"/order", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scalablepress: order submission failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := decodeBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scalablepress: decoding order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("scalablepress: order submission returned status %d", resp.StatusCode)
	}

	result := &SubmitResult{
		Status:      "submitted",
		RawResponse: raw,
	}
	if id, ok := raw["orderId"].(string); ok {
		result.VendorOrderID = id
	}

	a.logger.Info("scalablepress order submitted",
		slog.String("order_number", order.OrderNumber),
		slog.String("vendor_order_id", result.VendorOrderID))

	return result, nil
}

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

const psrestfulBaseURL = "https://api.psrestful.com/v1.0.0"

// PSRestfulAdapter submits promotional product orders through the PSRestful
// gateway, which fronts PromoStandards suppliers with a single API key.
type PSRestfulAdapter struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	// overridable in tests
	apiBaseURL string
}

func (a *PSRestfulAdapter) baseURL() string {
	if a.apiBaseURL != "" {
		return a.apiBaseURL
	}
	return psrestfulBaseURL
}

// NewPSRestfulAdapter creates a PSRestful adapter.
func NewPSRestfulAdapter(apiKey string, logger *slog.Logger) *PSRestfulAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PSRestfulAdapter{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (a *PSRestfulAdapter) Key() string  { return domain.VendorPSRestful }
func (a *PSRestfulAdapter) Name() string { return "PSRestful" }

// SubmitOrder submits the order's PSRestful line items as a purchase order.
func (a *PSRestfulAdapter) SubmitOrder(ctx context.Context, order *domain.Order) (*SubmitResult, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("psrestful: API key not configured")
	}

	type psLineItem struct {
		ProductID     string            `json:"productId"`
		Quantity      int64             `json:"quantity"`
		Configuration map[string]string `json:"configuration,omitempty"`
		ArtworkURL    string            `json:"artworkUrl,omitempty"`
	}

	lineItems := make([]psLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		if item.Vendor != domain.VendorPSRestful {
			continue
		}
		lineItems = append(lineItems, psLineItem{
			ProductID:     item.ProductID.String(),
			Quantity:      int64(item.Quantity),
			Configuration: item.Configuration,
			ArtworkURL:    item.ArtworkURL,
		})
	}
	if len(lineItems) == 0 {
		return nil, fmt.Errorf("psrestful: order %s has no psrestful items", order.OrderNumber)
	}

	payload := map[string]any{
		"poNumber":  order.OrderNumber,
		"orderType": "Blank",
		"lineItems": lineItems,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL()+"/purchase-orders/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("psrestful: order submission failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := decodeBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("psrestful: decoding order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("psrestful: order submission returned status %d", resp.StatusCode)
	}

	result := &SubmitResult{
		Status:      "submitted",
		RawResponse: raw,
	}
	if id, ok := raw["transactionId"].(string); ok {
		result.VendorOrderID = id
	}

	a.logger.Info("psrestful order submitted",
		slog.String("order_number", order.OrderNumber),
		slog.String("vendor_order_id", result.VendorOrderID))

	return result, nil
}

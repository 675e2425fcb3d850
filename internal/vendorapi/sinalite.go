package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/printpower/storefront/internal/domain"
)

const (
	sinaliteTestBaseURL = "https://api.sinaliteuppy.com"
	sinaliteLiveBaseURL = "https://liveapi.sinalite.com"
	sinaliteAuthURL     = "https://api.sinalite.com/auth"
)

// SinaliteConfig holds SinaLite API credentials. The vendor issues separate
// test and live credential pairs; Mode selects which pair is used.
type SinaliteConfig struct {
	Mode             string // "test" or "live"
	TestClientID     string
	TestClientSecret string
	LiveClientID     string
	LiveClientSecret string
}

// SinaliteAdapter submits orders to the SinaLite print API.
//
// SinaLite uses OAuth client-credentials auth: a short-lived bearer token is
// obtained from the auth endpoint and reused until it expires.
type SinaliteAdapter struct {
	config     SinaliteConfig
	httpClient *http.Client
	logger     *slog.Logger

	// overridable in tests
	apiBaseURL string
	authURL    string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewSinaliteAdapter creates a SinaLite adapter.
func NewSinaliteAdapter(config SinaliteConfig, logger *slog.Logger) *SinaliteAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SinaliteAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (a *SinaliteAdapter) Key() string  { return domain.VendorSinalite }
func (a *SinaliteAdapter) Name() string { return "SinaLite" }

func (a *SinaliteAdapter) baseURL() string {
	if a.apiBaseURL != "" {
		return a.apiBaseURL
	}
	if a.config.Mode == "live" {
		return sinaliteLiveBaseURL
	}
	return sinaliteTestBaseURL
}

func (a *SinaliteAdapter) tokenURL() string {
	if a.authURL != "" {
		return a.authURL
	}
	return sinaliteAuthURL
}

func (a *SinaliteAdapter) credentials() (string, string) {
	if a.config.Mode == "live" {
		return a.config.LiveClientID, a.config.LiveClientSecret
	}
	return a.config.TestClientID, a.config.TestClientSecret
}

// getToken returns a valid bearer token, fetching a new one when the cached
// token is missing or within a minute of expiry.
func (a *SinaliteAdapter) getToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Add(time.Minute).Before(a.tokenExpiry) {
		return a.token, nil
	}

	clientID, clientSecret := a.credentials()
	body, err := json.Marshal(map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"grant_type":    "client_credentials",
		"audience":      a.baseURL(),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sinalite: auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sinalite: auth returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("sinalite: decoding auth response: %w", err)
	}

	a.token = tokenResp.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return a.token, nil
}

// SubmitOrder submits the order's SinaLite line items.
//
// The payload shape follows SinaLite's order endpoint; product option ids are
// carried through from the item configuration captured at checkout.
func (a *SinaliteAdapter) SubmitOrder(ctx context.Context, order *domain.Order) (*SubmitResult, error) {
	token, err := a.getToken(ctx)
	if err != nil {
		return nil, err
	}

	type sinaliteItem struct {
		ProductID  string            `json:"productId"`
		Quantity   int64             `json:"quantity"`
		Options    map[string]string `json:"options,omitempty"`
		ArtworkURL string            `json:"artworkUrl,omitempty"`
	}

	items := make([]sinaliteItem, 0, len(order.Items))
	for _, item := range order.Items {
		if item.Vendor != domain.VendorSinalite {
			continue
		}
		items = append(items, sinaliteItem{
			ProductID:  item.ProductID.String(),
			Quantity:   int64(item.Quantity),
			Options:    item.Configuration,
			ArtworkURL: item.ArtworkURL,
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("sinalite: order %s has no sinalite items", order.OrderNumber)
	}

	payload := map[string]any{
		"referenceId":   order.OrderNumber,
		"customerEmail": order.CustomerEmail,
		"items":         items,
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
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sinalite: order submission failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := decodeBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sinalite: decoding order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sinalite: order submission returned status %d", resp.StatusCode)
	}

	result := &SubmitResult{
		Status:      "submitted",
		RawResponse: raw,
	}
	if id, ok := raw["orderId"].(string); ok {
		result.VendorOrderID = id
	} else if id, ok := raw["orderId"].(float64); ok {
		result.VendorOrderID = fmt.Sprintf("%.0f", id)
	}

	a.logger.Info("sinalite order submitted",
		slog.String("order_number", order.OrderNumber),
		slog.String("vendor_order_id", result.VendorOrderID))

	return result, nil
}

// GetTrackingInfo polls SinaLite for shipment tracking on a submitted order.
func (a *SinaliteAdapter) GetTrackingInfo(ctx context.Context, order *domain.Order) (*TrackingInfo, error) {
	if order.VendorOrderID == "" {
		return nil, nil
	}

	token, err := a.getToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/order/%s/tracking", a.baseURL(), order.VendorOrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sinalite: tracking request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sinalite: tracking returned status %d", resp.StatusCode)
	}

	var tracking struct {
		TrackingNumber string `json:"trackingNumber"`
		TrackingURL    string `json:"trackingUrl"`
		Carrier        string `json:"carrier"`
		Status         string `json:"status"`
		ShippedAt      string `json:"shippedAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tracking); err != nil {
		return nil, fmt.Errorf("sinalite: decoding tracking response: %w", err)
	}
	if tracking.TrackingNumber == "" {
		return nil, nil
	}

	info := &TrackingInfo{
		TrackingNumber: tracking.TrackingNumber,
		TrackingURL:    tracking.TrackingURL,
		Carrier:        tracking.Carrier,
		Status:         tracking.Status,
	}
	if tracking.ShippedAt != "" {
		if ts, err := time.Parse(time.RFC3339, tracking.ShippedAt); err == nil {
			info.ShippedAt = &ts
		}
	}
	return info, nil
}

func decodeBody(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]any{"body": string(data)}, nil
	}
	return raw, nil
}

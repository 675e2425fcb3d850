// Package vendorapi contains print-vendor order submission adapters.
//
// Each vendor exposes a different API shape; adapters normalize them behind
// the Adapter interface so the fulfillment dispatcher can route by vendor key
// without knowing vendor specifics.
package vendorapi

import (
	"context"
	"fmt"
	"time"

	"github.com/printpower/storefront/internal/domain"
)

// Adapter submits orders to one print vendor's API.
type Adapter interface {
	// Key returns the vendor key this adapter serves (e.g. "sinalite").
	Key() string

	// Name returns the human-readable vendor name for order records.
	Name() string

	// SubmitOrder sends the order's line items for this vendor to the
	// vendor's API. Only items whose Vendor matches Key() are submitted.
	SubmitOrder(ctx context.Context, order *domain.Order) (*SubmitResult, error)
}

// TrackingProvider is implemented by adapters whose vendor exposes shipment
// tracking lookups.
type TrackingProvider interface {
	GetTrackingInfo(ctx context.Context, order *domain.Order) (*TrackingInfo, error)
}

// SubmitResult is the normalized outcome of a vendor order submission.
type SubmitResult struct {
	// VendorOrderID is the vendor's identifier for the created order.
	VendorOrderID string

	// Status is the vendor-reported order status, verbatim.
	Status string

	// RawResponse holds the decoded response body for diagnostics.
	RawResponse map[string]any
}

// TrackingInfo is the normalized shipment tracking state for an order.
type TrackingInfo struct {
	TrackingNumber string
	TrackingURL    string
	Carrier        string
	Status         string
	ShippedAt      *time.Time
}

// Registry maps vendor keys to their adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates a registry from the given adapters, keyed by Adapter.Key.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Key()] = a
	}
	return r
}

// Get returns the adapter for a vendor key.
func (r *Registry) Get(key string) (Adapter, error) {
	a, ok := r.adapters[key]
	if !ok {
		return nil, fmt.Errorf("vendorapi: no adapter registered for vendor %q", key)
	}
	return a, nil
}

// Keys returns the registered vendor keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		keys = append(keys, k)
	}
	return keys
}

package vendorapi

import (
	"context"
	"sync"

	"github.com/printpower/storefront/internal/domain"
)

// MockAdapter is a test implementation of Adapter and TrackingProvider.
// Set function fields to control behavior; CallLog records invocations.
type MockAdapter struct {
	mu sync.Mutex

	VendorKey  string
	VendorName string

	SubmitOrderFunc     func(ctx context.Context, order *domain.Order) (*SubmitResult, error)
	GetTrackingInfoFunc func(ctx context.Context, order *domain.Order) (*TrackingInfo, error)

	CallLog []string
}

func (m *MockAdapter) logCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, method)
}

// Calls returns a copy of the call log.
func (m *MockAdapter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

func (m *MockAdapter) Key() string {
	if m.VendorKey == "" {
		return "mock"
	}
	return m.VendorKey
}

func (m *MockAdapter) Name() string {
	if m.VendorName == "" {
		return "Mock Vendor"
	}
	return m.VendorName
}

func (m *MockAdapter) SubmitOrder(ctx context.Context, order *domain.Order) (*SubmitResult, error) {
	m.logCall("SubmitOrder")
	if m.SubmitOrderFunc != nil {
		return m.SubmitOrderFunc(ctx, order)
	}
	return &SubmitResult{
		VendorOrderID: "mock-" + order.OrderNumber,
		Status:        "submitted",
	}, nil
}

func (m *MockAdapter) GetTrackingInfo(ctx context.Context, order *domain.Order) (*TrackingInfo, error) {
	m.logCall("GetTrackingInfo")
	if m.GetTrackingInfoFunc != nil {
		return m.GetTrackingInfoFunc(ctx, order)
	}
	return nil, nil
}

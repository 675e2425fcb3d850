package billing

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockProvider is a test implementation of Provider.
// Set the function fields to control behavior; unset fields fall back to
// sensible defaults. CallLog records every invocation for assertions.
type MockProvider struct {
	mu sync.Mutex

	CreateCheckoutSessionFunc  func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)
	GetCheckoutSessionFunc     func(ctx context.Context, sessionID string) (*CheckoutSession, error)
	VerifyWebhookSignatureFunc func(payload []byte, signature string, secret string) error

	// CallLog records method invocations in order
	CallLog []string
}

// NewMockProvider creates a mock with default success behavior.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) logCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, method)
}

// Calls returns a copy of the call log.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	m.logCall("CreateCheckoutSession")
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	var total int64
	for _, item := range params.LineItems {
		total += item.UnitAmountCents * item.Quantity
	}
	return &CheckoutSession{
		ID:               fmt.Sprintf("cs_test_mock_%d", time.Now().UnixNano()),
		URL:              "https://checkout.example.com/pay/cs_test_mock",
		AmountTotalCents: total,
		Currency:         params.Currency,
		Status:           "open",
		CustomerEmail:    params.CustomerEmail,
		Metadata:         params.Metadata,
		CreatedAt:        time.Now(),
	}, nil
}

func (m *MockProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	m.logCall("GetCheckoutSession")
	if m.GetCheckoutSessionFunc != nil {
		return m.GetCheckoutSessionFunc(ctx, sessionID)
	}
	return &CheckoutSession{
		ID:     sessionID,
		Status: "complete",
	}, nil
}

func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	m.logCall("VerifyWebhookSignature")
	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature, secret)
	}
	if signature == "" {
		return ErrInvalidSignature
	}
	return nil
}

package email

import (
	"context"
	"fmt"
	"sync"
)

// MockSender is a test implementation of Sender that records sent emails.
type MockSender struct {
	mu sync.Mutex

	SendFunc func(ctx context.Context, email *Email) (string, error)

	// Sent holds every email passed to Send, in order.
	Sent []*Email
}

// NewMockSender creates a mock sender with default success behavior.
func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.mu.Lock()
	m.Sent = append(m.Sent, email)
	n := len(m.Sent)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}
	return fmt.Sprintf("mock-%d", n), nil
}

func (m *MockSender) SendTemplate(ctx context.Context, templateID string, to []string, data map[string]interface{}) (string, error) {
	return "", ErrNotImplemented
}

// SentCount returns how many emails were sent.
func (m *MockSender) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// LastSent returns the most recently sent email, or nil.
func (m *MockSender) LastSent() *Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}

package billing

import (
	"errors"
	"fmt"
)

// Common billing errors
var (
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)

// ProviderError wraps an error from the payment provider with context about
// which operation failed.
type ProviderError struct {
	Op  string // operation that failed, e.g. "create_checkout_session"
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("billing: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

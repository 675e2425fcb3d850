package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/printpower/storefront/internal/domain"
)

// Func-field mocks for the domain store interfaces. Unset fields panic so a
// test exercising an unexpected path fails loudly.

type mockProductStore struct {
	GetProductFunc func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

func (m *mockProductStore) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return m.GetProductFunc(ctx, id)
}

type mockOrderStore struct {
	CreateOrderFunc             func(ctx context.Context, order *domain.Order) error
	UpdateOrderSessionFunc      func(ctx context.Context, orderID uuid.UUID, sessionID string, taxCents int64) error
	GetOrderFunc                func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByNumberFunc        func(ctx context.Context, number string) (*domain.Order, error)
	FinalizeOrderFunc           func(ctx context.Context, params domain.FinalizeOrderParams) (*domain.Order, error)
	InsertCompletedOrderFunc    func(ctx context.Context, order *domain.Order) error
	UpdateVendorStatusFunc      func(ctx context.Context, orderID uuid.UUID, status domain.VendorStatus, message, vendorOrderID string) error
	UpdateTrackingFunc          func(ctx context.Context, orderID uuid.UUID, update domain.TrackingUpdate) error
	NextOrderNumberFunc         func(ctx context.Context) (string, error)
	ListOrdersByVendorStatusFunc func(ctx context.Context, status domain.VendorStatus, limit int) ([]domain.Order, error)
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	return m.CreateOrderFunc(ctx, order)
}

func (m *mockOrderStore) UpdateOrderSession(ctx context.Context, orderID uuid.UUID, sessionID string, taxCents int64) error {
	return m.UpdateOrderSessionFunc(ctx, orderID, sessionID, taxCents)
}

func (m *mockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return m.GetOrderFunc(ctx, id)
}

func (m *mockOrderStore) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return m.GetOrderByNumberFunc(ctx, number)
}

func (m *mockOrderStore) FinalizeOrder(ctx context.Context, params domain.FinalizeOrderParams) (*domain.Order, error) {
	return m.FinalizeOrderFunc(ctx, params)
}

func (m *mockOrderStore) InsertCompletedOrder(ctx context.Context, order *domain.Order) error {
	return m.InsertCompletedOrderFunc(ctx, order)
}

func (m *mockOrderStore) UpdateVendorStatus(ctx context.Context, orderID uuid.UUID, status domain.VendorStatus, message, vendorOrderID string) error {
	return m.UpdateVendorStatusFunc(ctx, orderID, status, message, vendorOrderID)
}

func (m *mockOrderStore) UpdateTracking(ctx context.Context, orderID uuid.UUID, update domain.TrackingUpdate) error {
	return m.UpdateTrackingFunc(ctx, orderID, update)
}

func (m *mockOrderStore) NextOrderNumber(ctx context.Context) (string, error) {
	return m.NextOrderNumberFunc(ctx)
}

func (m *mockOrderStore) ListOrdersByVendorStatus(ctx context.Context, status domain.VendorStatus, limit int) ([]domain.Order, error) {
	return m.ListOrdersByVendorStatusFunc(ctx, status, limit)
}

type mockDonationStore struct {
	GetNonprofitFunc         func(ctx context.Context, id uuid.UUID) (*domain.Nonprofit, error)
	GetCauseFunc             func(ctx context.Context, id uuid.UUID) (*domain.Cause, error)
	CreateDonationFunc       func(ctx context.Context, donation *domain.Donation) error
	IncrementCauseRaisedFunc func(ctx context.Context, causeID uuid.UUID, amountCents int64) error
}

func (m *mockDonationStore) GetNonprofit(ctx context.Context, id uuid.UUID) (*domain.Nonprofit, error) {
	return m.GetNonprofitFunc(ctx, id)
}

func (m *mockDonationStore) GetCause(ctx context.Context, id uuid.UUID) (*domain.Cause, error) {
	return m.GetCauseFunc(ctx, id)
}

func (m *mockDonationStore) CreateDonation(ctx context.Context, donation *domain.Donation) error {
	return m.CreateDonationFunc(ctx, donation)
}

func (m *mockDonationStore) IncrementCauseRaised(ctx context.Context, causeID uuid.UUID, amountCents int64) error {
	return m.IncrementCauseRaisedFunc(ctx, causeID, amountCents)
}

type mockSettingsStore struct {
	GetPricingSettingsFunc func(ctx context.Context, vendor string) (*domain.PricingSettings, error)
	GetSettingFunc         func(ctx context.Context, key string) (string, error)
}

func (m *mockSettingsStore) GetPricingSettings(ctx context.Context, vendor string) (*domain.PricingSettings, error) {
	return m.GetPricingSettingsFunc(ctx, vendor)
}

func (m *mockSettingsStore) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingFunc == nil {
		return "", nil
	}
	return m.GetSettingFunc(ctx, key)
}

type mockPolicyStore struct {
	RecordPolicyAcceptanceFunc func(ctx context.Context, acceptance *domain.PolicyAcceptance) error
	recorded                   []*domain.PolicyAcceptance
}

func (m *mockPolicyStore) RecordPolicyAcceptance(ctx context.Context, acceptance *domain.PolicyAcceptance) error {
	m.recorded = append(m.recorded, acceptance)
	if m.RecordPolicyAcceptanceFunc != nil {
		return m.RecordPolicyAcceptanceFunc(ctx, acceptance)
	}
	return nil
}

type mockEventStore struct {
	MarkEventProcessedFunc func(ctx context.Context, eventID, eventType string) (bool, error)
	ReleaseEventFunc       func(ctx context.Context, eventID string) error
	released               []string
}

func (m *mockEventStore) MarkEventProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	if m.MarkEventProcessedFunc == nil {
		return true, nil
	}
	return m.MarkEventProcessedFunc(ctx, eventID, eventType)
}

func (m *mockEventStore) ReleaseEvent(ctx context.Context, eventID string) error {
	m.released = append(m.released, eventID)
	if m.ReleaseEventFunc != nil {
		return m.ReleaseEventFunc(ctx, eventID)
	}
	return nil
}

type mockDispatcher struct {
	DispatchFunc        func(ctx context.Context, order *domain.Order)
	RefreshTrackingFunc func(ctx context.Context, order *domain.Order) error
	dispatched          []*domain.Order
}

func (m *mockDispatcher) Dispatch(ctx context.Context, order *domain.Order) {
	m.dispatched = append(m.dispatched, order)
	if m.DispatchFunc != nil {
		m.DispatchFunc(ctx, order)
	}
}

func (m *mockDispatcher) RefreshTracking(ctx context.Context, order *domain.Order) error {
	if m.RefreshTrackingFunc != nil {
		return m.RefreshTrackingFunc(ctx, order)
	}
	return nil
}

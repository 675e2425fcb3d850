package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/printpower/storefront/internal/domain"
)

// Compile-time check that Store implements domain.OrderStore.
var _ domain.OrderStore = (*Store)(nil)

const orderColumns = `
	id, order_number, status,
	session_id, payment_intent_id, payment_mode, receipt_url, customer_email,
	items, subtotal_cents, shipping_cents, tax_cents, donation_cents, total_cents, currency,
	nonprofit_id, nonprofit_name, nonprofit_ein, cause_id,
	vendor_key, vendor_name, vendor_status, vendor_message, vendor_order_id,
	tracking_number, tracking_url, tracking_carrier, shipping_status, shipped_at,
	paid_at, created_at, updated_at`

// CreateOrder inserts a provisional order in state created. The session id
// holds a placeholder until the payment session exists.
func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to encode order items")
	}

	const query = `
		INSERT INTO orders (
			id, order_number, status, session_id, payment_mode, customer_email,
			items, subtotal_cents, shipping_cents, tax_cents, donation_cents, total_cents, currency,
			nonprofit_id, nonprofit_name, nonprofit_ein, cause_id,
			vendor_key, vendor_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at`

	err = s.pool.QueryRow(ctx, query,
		order.ID, order.OrderNumber, order.Status, order.SessionID, order.PaymentMode, order.CustomerEmail,
		items, order.SubtotalCents, order.ShippingCents, order.TaxCents, order.DonationCents, order.TotalCents, order.Currency,
		order.NonprofitID, order.NonprofitName, order.NonprofitEIN, order.CauseID,
		order.VendorKey, order.VendorName,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to save order")
	}
	return nil
}

// UpdateOrderSession replaces the placeholder session id and tax amount after
// the payment session is created.
func (s *Store) UpdateOrderSession(ctx context.Context, orderID uuid.UUID, sessionID string, taxCents int64) error {
	const query = `
		UPDATE orders
		SET session_id = $2, tax_cents = $3, total_cents = total_cents + $3 - tax_cents, updated_at = now()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, orderID, sessionID, taxCents)
	if err != nil {
		return domain.Internal(err, "order.update_session", "failed to update order session")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order.update_session", "order", orderID.String())
	}
	return nil
}

// GetOrder retrieves an order by id.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return s.scanOrder(ctx, "order.get", s.pool.QueryRow(ctx, query, id), id.String())
}

// GetOrderByNumber retrieves an order by its human-readable number.
func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE order_number = $1`, orderColumns)
	return s.scanOrder(ctx, "order.get_by_number", s.pool.QueryRow(ctx, query, number), number)
}

// FinalizeOrder transitions an order to completed with payment details from
// the webhook event.
func (s *Store) FinalizeOrder(ctx context.Context, params domain.FinalizeOrderParams) (*domain.Order, error) {
	query := fmt.Sprintf(`
		UPDATE orders
		SET status = 'completed',
		    session_id = $2,
		    payment_intent_id = $3,
		    receipt_url = $4,
		    customer_email = CASE WHEN $5 <> '' THEN $5 ELSE customer_email END,
		    total_cents = CASE WHEN $6 > 0 THEN $6 ELSE total_cents END,
		    donation_cents = $7,
		    nonprofit_id = COALESCE($8, nonprofit_id),
		    nonprofit_name = CASE WHEN $9 <> '' THEN $9 ELSE nonprofit_name END,
		    nonprofit_ein = CASE WHEN $10 <> '' THEN $10 ELSE nonprofit_ein END,
		    cause_id = COALESCE($11, cause_id),
		    paid_at = $12,
		    updated_at = now()
		WHERE id = $1
		RETURNING %s`, orderColumns)

	row := s.pool.QueryRow(ctx, query,
		params.OrderID, params.SessionID, params.PaymentIntentID, params.ReceiptURL,
		params.CustomerEmail, params.AmountTotal, params.DonationCents,
		params.NonprofitID, params.NonprofitName, params.NonprofitEIN, params.CauseID,
		params.PaidAt,
	)
	return s.scanOrder(ctx, "order.finalize", row, params.OrderID.String())
}

// InsertCompletedOrder creates a completed order directly from session data.
// Kept for webhook events whose metadata predates provisional orders.
func (s *Store) InsertCompletedOrder(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Internal(err, "order.insert_completed", "failed to encode order items")
	}

	const query = `
		INSERT INTO orders (
			id, order_number, status, session_id, payment_intent_id, payment_mode,
			receipt_url, customer_email,
			items, subtotal_cents, shipping_cents, tax_cents, donation_cents, total_cents, currency,
			nonprofit_id, nonprofit_name, nonprofit_ein, cause_id,
			vendor_key, vendor_name, paid_at
		) VALUES ($1, $2, 'completed', $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING created_at, updated_at`

	err = s.pool.QueryRow(ctx, query,
		order.ID, order.OrderNumber, order.SessionID, order.PaymentIntentID, order.PaymentMode,
		order.ReceiptURL, order.CustomerEmail,
		items, order.SubtotalCents, order.ShippingCents, order.TaxCents, order.DonationCents, order.TotalCents, order.Currency,
		order.NonprofitID, order.NonprofitName, order.NonprofitEIN, order.CauseID,
		order.VendorKey, order.VendorName, order.PaidAt,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return domain.Internal(err, "order.insert_completed", "failed to save order")
	}
	order.Status = domain.OrderStatusCompleted
	return nil
}

// UpdateVendorStatus records the fulfillment outcome for an order.
func (s *Store) UpdateVendorStatus(ctx context.Context, orderID uuid.UUID, status domain.VendorStatus, message, vendorOrderID string) error {
	const query = `
		UPDATE orders
		SET vendor_status = $2,
		    vendor_message = $3,
		    vendor_order_id = CASE WHEN $4 <> '' THEN $4 ELSE vendor_order_id END,
		    updated_at = now()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, orderID, status, message, vendorOrderID)
	if err != nil {
		return domain.Internal(err, "order.update_vendor_status", "failed to update vendor status")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order.update_vendor_status", "order", orderID.String())
	}
	return nil
}

// UpdateTracking merges non-empty tracking fields onto an order.
func (s *Store) UpdateTracking(ctx context.Context, orderID uuid.UUID, update domain.TrackingUpdate) error {
	const query = `
		UPDATE orders
		SET tracking_number = CASE WHEN $2 <> '' THEN $2 ELSE tracking_number END,
		    tracking_url = CASE WHEN $3 <> '' THEN $3 ELSE tracking_url END,
		    tracking_carrier = CASE WHEN $4 <> '' THEN $4 ELSE tracking_carrier END,
		    shipping_status = CASE WHEN $5 <> '' THEN $5 ELSE shipping_status END,
		    shipped_at = COALESCE($6, shipped_at),
		    updated_at = now()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, orderID,
		update.TrackingNumber, update.TrackingURL, update.TrackingCarrier,
		update.ShippingStatus, update.ShippedAt,
	)
	if err != nil {
		return domain.Internal(err, "order.update_tracking", "failed to update tracking")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order.update_tracking", "order", orderID.String())
	}
	return nil
}

// NextOrderNumber returns the next order number from the database sequence.
func (s *Store) NextOrderNumber(ctx context.Context) (string, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return "", domain.Internal(err, "order.next_number", "failed to get next order number")
	}
	return fmt.Sprintf("PPP-%d", n), nil
}

// ListOrdersByVendorStatus returns orders in a fulfillment state, newest
// first, up to limit.
func (s *Store) ListOrdersByVendorStatus(ctx context.Context, status domain.VendorStatus, limit int) ([]domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE vendor_status = $1
		ORDER BY created_at DESC
		LIMIT $2`, orderColumns)

	rows, err := s.pool.Query(ctx, query, status, limit)
	if err != nil {
		return nil, domain.Internal(err, "order.list_by_vendor_status", "failed to list orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return nil, domain.Internal(err, "order.list_by_vendor_status", "failed to scan order")
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list_by_vendor_status", "failed to read orders")
	}
	return orders, nil
}

// scanOrder decodes a single order row, mapping pgx.ErrNoRows to not found.
func (s *Store) scanOrder(ctx context.Context, op string, row pgx.Row, identifier string) (*domain.Order, error) {
	order, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "order", identifier)
		}
		return nil, domain.Internal(err, op, "failed to get order")
	}
	return order, nil
}

func scanOrderRow(row pgx.Row) (*domain.Order, error) {
	var (
		o     domain.Order
		items []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status,
		&o.SessionID, &o.PaymentIntentID, &o.PaymentMode, &o.ReceiptURL, &o.CustomerEmail,
		&items, &o.SubtotalCents, &o.ShippingCents, &o.TaxCents, &o.DonationCents, &o.TotalCents, &o.Currency,
		&o.NonprofitID, &o.NonprofitName, &o.NonprofitEIN, &o.CauseID,
		&o.VendorKey, &o.VendorName, &o.VendorStatus, &o.VendorMessage, &o.VendorOrderID,
		&o.TrackingNumber, &o.TrackingURL, &o.TrackingCarrier, &o.ShippingStatus, &o.ShippedAt,
		&o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decoding order items: %w", err)
		}
	}
	return &o, nil
}

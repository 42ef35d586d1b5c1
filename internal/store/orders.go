package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fondaapp/print-fulfillment/internal/orders"
	"github.com/fondaapp/print-fulfillment/internal/printjob"
)

// GetOrder reads an order header. The order tables belong to the order
// service; this subsystem only ever reads them.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*orders.Order, error) {
	query := `
		SELECT id, order_number, service_type, table_label, state,
		       total, payment_method, paid_at, note, created_at
		FROM orders
		WHERE id = $1
	`

	var order orders.Order
	if err := s.db.GetContext(ctx, &order, query, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, printjob.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListOrderItems reads an order's line items in insertion order.
func (s *Store) ListOrderItems(ctx context.Context, orderID string) ([]orders.LineItem, error) {
	query := `
		SELECT id, order_id, name, category, quantity,
		       unit_price, subtotal, personalization
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	var items []orders.LineItem
	if err := s.db.SelectContext(ctx, &items, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	return items, nil
}

// Package orders holds the read-only view of the order domain consumed by
// the print subsystem. Orders are owned by the order service; this package
// never mutates them.
package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType distinguishes dine-in from takeaway orders.
type ServiceType string

const (
	ServiceDineIn   ServiceType = "dine_in"
	ServiceTakeaway ServiceType = "takeaway"
)

// Order is the order header as stored by the order service.
type Order struct {
	ID            string          `db:"id"`
	Number        string          `db:"order_number"`
	ServiceType   ServiceType     `db:"service_type"`
	TableLabel    string          `db:"table_label"`
	State         string          `db:"state"`
	Total         decimal.Decimal `db:"total"`
	PaymentMethod string          `db:"payment_method"`
	PaidAt        *time.Time      `db:"paid_at"`
	Note          string          `db:"note"`
	CreatedAt     time.Time       `db:"created_at"`
}

// LineItem is a single order line. Personalization carries the raw
// customization payload exactly as the order service stored it; decoding
// happens at the renderer boundary.
type LineItem struct {
	ID              int64           `db:"id"`
	OrderID         string          `db:"order_id"`
	Name            string          `db:"name"`
	Category        string          `db:"category"`
	Quantity        int             `db:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	Personalization string          `db:"personalization"`
}

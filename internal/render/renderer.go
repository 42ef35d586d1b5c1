// Package render turns an order and its line items into a flat sequence of
// print primitives. It performs no I/O and holds no mutable state, so both
// templates are fully testable in isolation.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/fondaapp/print-fulfillment/internal/orders"
)

const (
	paperWidth       = 42
	receiptNameWidth = 20
	dateLayout       = "02/01/2006"
	timeLayout       = "15:04"
)

// BusinessInfo is the identity block printed on customer receipts.
type BusinessInfo struct {
	Name    string
	TaxID   string
	Address string
	Phone   string
	Footer  string
}

// Renderer builds kitchen tickets and customer receipts.
type Renderer struct {
	business BusinessInfo
}

// New creates a Renderer with the given business identity.
func New(business BusinessInfo) *Renderer {
	return &Renderer{business: business}
}

// KitchenTicket renders the kitchen-facing order slip. Items are grouped by
// category in order of first appearance; personalization fragments print
// indented under their item.
func (r *Renderer) KitchenTicket(order *orders.Order, items []orders.LineItem, printedAt time.Time) []Primitive {
	out := []Primitive{
		Init(),
		Align(AlignCenter),
		Bold(true),
		Text("*** COMANDA COCINA ***"),
		Bold(false),
		Text("Orden " + order.Number),
		Text(serviceLabel(order)),
		Text(order.CreatedAt.Format(timeLayout)),
		Align(AlignLeft),
		Text(divider()),
	}

	totalItems := 0
	for _, category := range categoriesInOrder(items) {
		out = append(out, Bold(true), Text(strings.ToUpper(category)), Bold(false))
		for _, item := range items {
			if item.Category != category {
				continue
			}
			totalItems += item.Quantity
			out = append(out, Text(fmt.Sprintf("%dx %s", item.Quantity, strings.ToUpper(item.Name))))
			for _, line := range ParsePersonalization(item.Personalization).Lines() {
				out = append(out, Text("  "+line))
			}
		}
	}

	if order.Note != "" {
		out = append(out,
			Text(divider()),
			Bold(true),
			Text("NOTA:"),
			Bold(false),
			Text(order.Note),
		)
	}

	out = append(out,
		Text(divider()),
		Text(fmt.Sprintf("Items: %d", totalItems)),
		Text("Impreso: "+printedAt.Format(dateLayout+" "+timeLayout)),
		Feed(3),
		Cut(),
	)
	return out
}

// Receipt renders the customer-facing payment document. Unit and line prices
// are tax-exclusive; the totals block shows net, tax and the order's stored
// gross total.
func (r *Renderer) Receipt(order *orders.Order, items []orders.LineItem, printedAt time.Time) []Primitive {
	out := []Primitive{
		Init(),
		Align(AlignCenter),
		Bold(true),
		Text(r.business.Name),
		Bold(false),
	}
	if r.business.TaxID != "" {
		out = append(out, Text("RUT: "+r.business.TaxID))
	}
	if r.business.Address != "" {
		out = append(out, Text(r.business.Address))
	}
	if r.business.Phone != "" {
		out = append(out, Text("Fono: "+r.business.Phone))
	}

	when := order.CreatedAt
	if order.PaidAt != nil {
		when = *order.PaidAt
	}

	out = append(out,
		Align(AlignLeft),
		Text(divider()),
		Text("Orden: "+order.Number),
		Text(serviceLabel(order)),
		Text("Fecha: "+when.Format(dateLayout)),
		Text("Hora:  "+when.Format(timeLayout)),
		Text(divider()),
	)

	breakdowns := make([]TaxBreakdown, len(items))
	for i, item := range items {
		breakdowns[i] = SplitGross(item.Subtotal)
		unitNet := SplitGross(item.UnitPrice).Net
		out = append(out, Text(fmt.Sprintf("%2d %s %8s %9s",
			item.Quantity,
			padRight(truncate(item.Name, receiptNameWidth), receiptNameWidth),
			formatAmount(unitNet),
			formatAmount(breakdowns[i].Net),
		)))
	}

	totals := SumBreakdowns(breakdowns)
	out = append(out,
		Text(divider()),
		Text(totalLine("Neto", totals.Net)),
		Text(totalLine("IVA (19%)", totals.Tax)),
		Bold(true),
		Text(totalLine("TOTAL", order.Total)),
		Bold(false),
	)

	if order.PaymentMethod != "" {
		out = append(out, Text(divider()), Text("Pago: "+paymentLabel(order.PaymentMethod)))
		if order.PaidAt != nil {
			out = append(out, Text("Pagado: "+order.PaidAt.Format(dateLayout+" "+timeLayout)))
		}
	}

	footer := r.business.Footer
	if footer == "" {
		footer = "Gracias por su preferencia!"
	}
	out = append(out,
		Feed(1),
		Align(AlignCenter),
		Text(footer),
		Feed(3),
		Cut(),
	)
	return out
}

func serviceLabel(order *orders.Order) string {
	if order.ServiceType == orders.ServiceDineIn {
		if order.TableLabel != "" {
			return "Mesa " + order.TableLabel
		}
		return "En local"
	}
	return "Para llevar"
}

func paymentLabel(method string) string {
	switch method {
	case "cash":
		return "Efectivo"
	case "card":
		return "Tarjeta"
	case "transfer":
		return "Transferencia"
	}
	return method
}

func categoriesInOrder(items []orders.LineItem) []string {
	var categories []string
	seen := make(map[string]bool)
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			categories = append(categories, item.Category)
		}
	}
	return categories
}

// truncate and padRight count runes, not bytes, so accented item names never
// end mid-rune or shift the price columns.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func totalLine(label string, amount decimal.Decimal) string {
	value := formatAmount(amount)
	pad := paperWidth - len(label) - len(value)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + value
}

func divider() string {
	return strings.Repeat("-", paperWidth)
}

// Package dispatch performs the physical half of a print: render the
// document, acquire a printer for the target, write the bytes, release the
// connection. It is shared by the executor and the immediate-print path.
package dispatch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fondaapp/print-fulfillment/internal/orders"
	"github.com/fondaapp/print-fulfillment/internal/printer"
	"github.com/fondaapp/print-fulfillment/internal/printjob"
	"github.com/fondaapp/print-fulfillment/internal/render"
)

// Connector acquires a validated printer handle for a logical target.
type Connector interface {
	Connect(target printjob.Target) (*printer.Printer, error)
}

// Dispatcher renders and physically prints documents.
type Dispatcher struct {
	renderer *render.Renderer
	printers Connector
	logger   *slog.Logger
}

// New creates a Dispatcher.
func New(renderer *render.Renderer, printers Connector, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		renderer: renderer,
		printers: printers,
		logger:   logger,
	}
}

// Dispatch prints one document. Kitchen jobs render the kitchen ticket;
// receipt and payment jobs render the customer receipt. The connection is
// closed before returning so consecutive jobs never interleave bytes.
func (d *Dispatcher) Dispatch(jobType printjob.Type, target printjob.Target, order *orders.Order, items []orders.LineItem) error {
	var prims []render.Primitive
	switch jobType {
	case printjob.TypeKitchen:
		prims = d.renderer.KitchenTicket(order, items, time.Now())
	case printjob.TypeReceipt, printjob.TypePayment:
		prims = d.renderer.Receipt(order, items, time.Now())
	default:
		return fmt.Errorf("%w: %q", printjob.ErrInvalidType, jobType)
	}

	p, err := d.printers.Connect(target)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Print(prims); err != nil {
		return fmt.Errorf("dispatch to %s: %w", target, err)
	}

	d.logger.Info("document printed",
		slog.String("order_id", order.ID),
		slog.String("type", string(jobType)),
		slog.String("target", string(target)),
	)
	return nil
}

package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/fondaapp/print-fulfillment/internal/orders"
	"github.com/fondaapp/print-fulfillment/internal/printjob"
	"github.com/fondaapp/print-fulfillment/internal/tips"
	"github.com/shopspring/decimal"
)

// JobStore is the persistence surface the HTTP handlers need.
type JobStore interface {
	CreateJob(ctx context.Context, job *printjob.Job) error
	GetJob(ctx context.Context, jobID string) (*printjob.Job, error)
	ListJobs(ctx context.Context, status printjob.Status, orderID string, limit int) ([]printjob.Job, error)
	GetOrder(ctx context.Context, orderID string) (*orders.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]orders.LineItem, error)
}

// Publisher notifies executors that new work exists. Publishing is best
// effort; executors poll the store regardless.
type Publisher interface {
	PublishJobCreated(ctx context.Context, jobID string) error
}

// Dispatcher prints a document immediately, bypassing the queue.
type Dispatcher interface {
	Dispatch(jobType printjob.Type, target printjob.Target, order *orders.Order, items []orders.LineItem) error
}

// TipService distributes and aggregates tips.
type TipService interface {
	Distribute(ctx context.Context, orderID string, amount decimal.Decimal, at time.Time) ([]tips.Share, error)
	Totals(ctx context.Context, period string, at time.Time) ([]tips.Total, error)
}

// Dependencies holds all dependencies needed by handlers.
type Dependencies struct {
	Logger     *slog.Logger
	Store      JobStore
	Publisher  Publisher
	Dispatcher Dispatcher
	Tips       TipService
}

// Package executor polls the print job store, claims pending jobs and
// dispatches them to physical printers. It is safe to run several executor
// processes against the same store: the store's conditional claim guarantees
// a single winner per job.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fondaapp/print-fulfillment/internal/orders"
	"github.com/fondaapp/print-fulfillment/internal/printjob"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 50
)

// Store is the durable queue contract the executor depends on.
type Store interface {
	ListPending(ctx context.Context, limit int) ([]printjob.Job, error)
	ClaimJob(ctx context.Context, jobID, executorID string) (*printjob.Job, error)
	CompleteJob(ctx context.Context, jobID string) error
	FailJob(ctx context.Context, jobID, errMsg string) error
	GetOrder(ctx context.Context, orderID string) (*orders.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]orders.LineItem, error)
}

// Dispatcher performs the physical print for a claimed job.
type Dispatcher interface {
	Dispatch(jobType printjob.Type, target printjob.Target, order *orders.Order, items []orders.LineItem) error
}

// Config holds executor construction parameters.
type Config struct {
	Store        Store
	Dispatcher   Dispatcher
	Logger       *slog.Logger
	PollInterval time.Duration
	BatchSize    int
	ID           string
}

// Executor is the polling print worker.
type Executor struct {
	store      Store
	dispatcher Dispatcher
	logger     *slog.Logger
	interval   time.Duration
	batchSize  int
	id         string
	nudge      chan struct{}
}

// New creates an executor instance.
func New(cfg *Config) *Executor {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	id := cfg.ID
	if id == "" {
		id = "executor-" + uuid.New().String()[:8]
	}

	return &Executor{
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
		interval:   interval,
		batchSize:  batch,
		id:         id,
		nudge:      make(chan struct{}, 1),
	}
}

// ID returns the executor's claim identity.
func (e *Executor) ID() string {
	return e.id
}

// Nudge triggers an immediate poll without waiting for the next tick. It
// never blocks; a nudge during an in-flight tick coalesces with it.
func (e *Executor) Nudge() {
	select {
	case e.nudge <- struct{}{}:
	default:
	}
}

// Run polls until the context is canceled.
func (e *Executor) Run(ctx context.Context) error {
	e.logger.Info("print executor started",
		slog.String("executor_id", e.id),
		slog.Duration("poll_interval", e.interval),
		slog.Int("batch_size", e.batchSize),
	)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("print executor stopping",
				slog.String("executor_id", e.id),
			)
			return nil
		case <-ticker.C:
			e.tick(ctx)
		case <-e.nudge:
			e.tick(ctx)
		}
	}
}

// tick claims and dispatches one batch of pending jobs. Jobs for different
// targets run concurrently because they drive independent devices; jobs for
// the same target run strictly in FIFO order so their bytes never interleave
// on one printer.
func (e *Executor) tick(ctx context.Context) {
	jobs, err := e.store.ListPending(ctx, e.batchSize)
	if err != nil {
		e.logger.Error("failed to list pending jobs",
			slog.String("error", err.Error()),
		)
		return
	}
	if len(jobs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for target, batch := range groupByTarget(jobs) {
		wg.Add(1)
		go func(target printjob.Target, batch []printjob.Job) {
			defer wg.Done()
			e.processTarget(ctx, target, batch)
		}(target, batch)
	}
	wg.Wait()
}

func groupByTarget(jobs []printjob.Job) map[printjob.Target][]printjob.Job {
	grouped := make(map[printjob.Target][]printjob.Job)
	for _, job := range jobs {
		grouped[job.Target] = append(grouped[job.Target], job)
	}
	return grouped
}

func (e *Executor) processTarget(ctx context.Context, target printjob.Target, jobs []printjob.Job) {
	e.logger.Debug("dispatching batch",
		slog.String("target", string(target)),
		slog.Int("jobs", len(jobs)),
	)

	for _, candidate := range jobs {
		job, err := e.store.ClaimJob(ctx, candidate.ID, e.id)
		if err != nil {
			if errors.Is(err, printjob.ErrAlreadyClaimed) {
				// Another executor instance won the race.
				e.logger.Debug("job already claimed, skipping",
					slog.String("job_id", candidate.ID),
				)
				continue
			}
			e.logger.Error("failed to claim job",
				slog.String("job_id", candidate.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		e.process(ctx, job)
	}
}

// process runs a claimed job to completion. No automatic re-enqueue happens
// after a terminal failure; retry is an explicit new job.
func (e *Executor) process(ctx context.Context, job *printjob.Job) {
	order, err := e.store.GetOrder(ctx, job.OrderID)
	if err != nil {
		e.fail(ctx, job, err)
		return
	}

	items, err := e.store.ListOrderItems(ctx, job.OrderID)
	if err != nil {
		e.fail(ctx, job, err)
		return
	}

	if err := e.dispatcher.Dispatch(job.Type, job.Target, order, items); err != nil {
		e.fail(ctx, job, err)
		return
	}

	if err := e.store.CompleteJob(ctx, job.ID); err != nil {
		e.logger.Error("failed to mark job completed",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	e.logger.Info("print job completed",
		slog.String("job_id", job.ID),
		slog.String("order_id", job.OrderID),
		slog.String("target", string(job.Target)),
	)
}

func (e *Executor) fail(ctx context.Context, job *printjob.Job, cause error) {
	e.logger.Error("print job failed",
		slog.String("job_id", job.ID),
		slog.String("order_id", job.OrderID),
		slog.String("error", cause.Error()),
	)

	if err := e.store.FailJob(ctx, job.ID, cause.Error()); err != nil {
		e.logger.Error("failed to mark job failed",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
	}
}

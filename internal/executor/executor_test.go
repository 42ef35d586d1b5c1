package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondaapp/print-fulfillment/internal/orders"
	"github.com/fondaapp/print-fulfillment/internal/printjob"
)

// fakeStore implements Store in memory with the same compare-and-swap claim
// semantics as the SQL store.
type fakeStore struct {
	mu     sync.Mutex
	jobs   map[string]*printjob.Job
	fifo   []string
	orders map[string]*orders.Order
	items  map[string][]orders.LineItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:   make(map[string]*printjob.Job),
		orders: make(map[string]*orders.Order),
		items:  make(map[string][]orders.LineItem),
	}
}

func (s *fakeStore) addOrder(id string, itemCount int) {
	s.orders[id] = &orders.Order{
		ID:        id,
		Number:    "N-" + id,
		Total:     decimal.NewFromInt(1000),
		CreatedAt: time.Now(),
	}
	for i := 0; i < itemCount; i++ {
		s.items[id] = append(s.items[id], orders.LineItem{
			OrderID:   id,
			Name:      "Item",
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(1000),
			Subtotal:  decimal.NewFromInt(1000),
		})
	}
}

func (s *fakeStore) addJob(id, orderID string, jobType printjob.Type, target printjob.Target) {
	s.jobs[id] = &printjob.Job{
		ID:        id,
		OrderID:   orderID,
		Type:      jobType,
		Target:    target,
		Status:    printjob.StatusPending,
		CreatedAt: time.Now(),
	}
	s.fifo = append(s.fifo, id)
}

func (s *fakeStore) ListPending(_ context.Context, limit int) ([]printjob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []printjob.Job
	for _, id := range s.fifo {
		if len(out) == limit {
			break
		}
		if job := s.jobs[id]; job.Status == printjob.StatusPending {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *fakeStore) ClaimJob(_ context.Context, jobID, executorID string) (*printjob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok || job.Status != printjob.StatusPending {
		return nil, printjob.ErrAlreadyClaimed
	}
	job.Status = printjob.StatusProcessing
	job.Attempts++
	_ = executorID
	copied := *job
	return &copied, nil
}

func (s *fakeStore) CompleteJob(_ context.Context, jobID string) error {
	return s.finish(jobID, printjob.StatusCompleted, "")
}

func (s *fakeStore) FailJob(_ context.Context, jobID, errMsg string) error {
	return s.finish(jobID, printjob.StatusFailed, errMsg)
}

func (s *fakeStore) finish(jobID string, status printjob.Status, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok || job.Status != printjob.StatusProcessing {
		return printjob.ErrInvalidTransition
	}
	job.Status = status
	now := time.Now()
	job.ProcessedAt = &now
	if errMsg != "" {
		job.Error = &errMsg
	}
	return nil
}

func (s *fakeStore) GetOrder(_ context.Context, orderID string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, printjob.ErrOrderNotFound
	}
	return order, nil
}

func (s *fakeStore) ListOrderItems(_ context.Context, orderID string) ([]orders.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[orderID], nil
}

func (s *fakeStore) status(jobID string) printjob.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[jobID].Status
}

func (s *fakeStore) errorMessage(jobID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobs[jobID].Error == nil {
		return ""
	}
	return *s.jobs[jobID].Error
}

// recordingDispatcher captures dispatch order per target.
type recordingDispatcher struct {
	mu       sync.Mutex
	byTarget map[printjob.Target][]string
	err      error
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{byTarget: make(map[printjob.Target][]string)}
}

func (d *recordingDispatcher) Dispatch(_ printjob.Type, target printjob.Target, order *orders.Order, _ []orders.LineItem) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.byTarget[target] = append(d.byTarget[target], order.ID)
	return nil
}

func (d *recordingDispatcher) total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, ids := range d.byTarget {
		n += len(ids)
	}
	return n
}

func testExecutor(store Store, dispatcher Dispatcher, id string) *Executor {
	return New(&Config{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     slog.Default(),
		ID:         id,
	})
}

func TestExecutor_TickCompletesPendingJobs(t *testing.T) {
	store := newFakeStore()
	store.addOrder("o1", 2)
	store.addJob("j1", "o1", printjob.TypeKitchen, printjob.TargetKitchen)
	store.addJob("j2", "o1", printjob.TypeReceipt, printjob.TargetCashier)
	dispatcher := newRecordingDispatcher()

	e := testExecutor(store, dispatcher, "exec-1")
	e.tick(context.Background())

	assert.Equal(t, printjob.StatusCompleted, store.status("j1"))
	assert.Equal(t, printjob.StatusCompleted, store.status("j2"))
	assert.Equal(t, 2, dispatcher.total())
}

func TestExecutor_ConcurrentClaimSingleWinner(t *testing.T) {
	store := newFakeStore()
	store.addOrder("o1", 1)
	store.addJob("j1", "o1", printjob.TypeKitchen, printjob.TargetKitchen)
	dispatcher := newRecordingDispatcher()

	a := testExecutor(store, dispatcher, "exec-a")
	b := testExecutor(store, dispatcher, "exec-b")

	// Both instances poll the same store at the same time. Exactly one
	// claim wins; the loser observes ErrAlreadyClaimed and skips.
	var wg sync.WaitGroup
	for _, e := range []*Executor{a, b} {
		wg.Add(1)
		go func(e *Executor) {
			defer wg.Done()
			e.tick(context.Background())
		}(e)
	}
	wg.Wait()

	assert.Equal(t, printjob.StatusCompleted, store.status("j1"))
	assert.Equal(t, 1, dispatcher.total(), "job must be dispatched exactly once")
	assert.Equal(t, 1, store.jobs["j1"].Attempts)
}

func TestExecutor_SameTargetKeepsFIFOOrder(t *testing.T) {
	store := newFakeStore()
	for i, id := range []string{"oa", "ob", "oc"} {
		store.addOrder(id, 1)
		jobID := []string{"j1", "j2", "j3"}[i]
		store.addJob(jobID, id, printjob.TypeKitchen, printjob.TargetKitchen)
	}
	dispatcher := newRecordingDispatcher()

	e := testExecutor(store, dispatcher, "exec-1")
	e.tick(context.Background())

	assert.Equal(t, []string{"oa", "ob", "oc"}, dispatcher.byTarget[printjob.TargetKitchen])
}

func TestExecutor_DispatchFailureMarksJobFailed(t *testing.T) {
	store := newFakeStore()
	store.addOrder("o1", 1)
	store.addJob("j1", "o1", printjob.TypeKitchen, printjob.TargetKitchen)
	dispatcher := newRecordingDispatcher()
	dispatcher.err = errors.New("printer unreachable")

	e := testExecutor(store, dispatcher, "exec-1")
	e.tick(context.Background())

	assert.Equal(t, printjob.StatusFailed, store.status("j1"))
	assert.Equal(t, "printer unreachable", store.errorMessage("j1"))

	// Failed is terminal: the next tick must not pick the job up again.
	dispatcher.err = nil
	e.tick(context.Background())
	assert.Equal(t, printjob.StatusFailed, store.status("j1"))
	assert.Equal(t, 0, dispatcher.total())
}

func TestExecutor_MissingOrderMarksJobFailed(t *testing.T) {
	store := newFakeStore()
	store.addJob("j1", "ghost", printjob.TypeKitchen, printjob.TargetKitchen)
	dispatcher := newRecordingDispatcher()

	e := testExecutor(store, dispatcher, "exec-1")
	e.tick(context.Background())

	assert.Equal(t, printjob.StatusFailed, store.status("j1"))
	assert.Contains(t, store.errorMessage("j1"), "order not found")
}

func TestExecutor_NudgeTriggersImmediatePoll(t *testing.T) {
	store := newFakeStore()
	store.addOrder("o1", 1)
	store.addJob("j1", "o1", printjob.TypeKitchen, printjob.TargetKitchen)
	dispatcher := newRecordingDispatcher()

	e := New(&Config{
		Store:        store,
		Dispatcher:   dispatcher,
		Logger:       slog.Default(),
		PollInterval: time.Hour, // only the nudge can trigger work
		ID:           "exec-1",
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()

	// The startup tick handles j1; enqueue another and nudge.
	require.Eventually(t, func() bool {
		return store.status("j1") == printjob.StatusCompleted
	}, time.Second, 10*time.Millisecond)

	store.mu.Lock()
	store.addOrder("o2", 1)
	store.addJob("j2", "o2", printjob.TypeReceipt, printjob.TargetCashier)
	store.mu.Unlock()
	e.Nudge()

	require.Eventually(t, func() bool {
		return store.status("j2") == printjob.StatusCompleted
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestNew_Defaults(t *testing.T) {
	e := New(&Config{Logger: slog.Default()})
	assert.Equal(t, defaultPollInterval, e.interval)
	assert.Equal(t, defaultBatchSize, e.batchSize)
	assert.NotEmpty(t, e.ID())
}

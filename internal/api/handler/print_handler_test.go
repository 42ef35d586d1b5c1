package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondaapp/print-fulfillment/internal/api/dto"
	"github.com/fondaapp/print-fulfillment/internal/orders"
	"github.com/fondaapp/print-fulfillment/internal/printjob"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeJobStore struct {
	mu      sync.Mutex
	jobs    map[string]*printjob.Job
	created []printjob.Job
	orders  map[string]*orders.Order
	items   map[string][]orders.LineItem
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:   make(map[string]*printjob.Job),
		orders: make(map[string]*orders.Order),
		items:  make(map[string][]orders.LineItem),
	}
}

func (s *fakeJobStore) CreateJob(_ context.Context, job *printjob.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	s.created = append(s.created, *job)
	return nil
}

func (s *fakeJobStore) GetJob(_ context.Context, jobID string) (*printjob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, printjob.ErrJobNotFound
	}
	return job, nil
}

func (s *fakeJobStore) ListJobs(_ context.Context, status printjob.Status, orderID string, limit int) ([]printjob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []printjob.Job
	for _, job := range s.created {
		if status != "" && job.Status != status {
			continue
		}
		if orderID != "" && job.OrderID != orderID {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, job)
	}
	return out, nil
}

func (s *fakeJobStore) GetOrder(_ context.Context, orderID string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, printjob.ErrOrderNotFound
	}
	return order, nil
}

func (s *fakeJobStore) ListOrderItems(_ context.Context, orderID string) ([]orders.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[orderID], nil
}

func (s *fakeJobStore) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (d *fakeDispatcher) Dispatch(_ printjob.Type, _ printjob.Target, _ *orders.Order, _ []orders.LineItem) error {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.done != nil {
		close(d.done)
	}
	return nil
}

func newTestHandler(store *fakeJobStore, dispatcher *fakeDispatcher) *PrintHandler {
	return NewPrintHandler(&Dependencies{
		Logger:     slog.Default(),
		Store:      store,
		Dispatcher: dispatcher,
	})
}

func addOrder(store *fakeJobStore, id string, itemCount int) {
	store.orders[id] = &orders.Order{
		ID:        id,
		Number:    "N-" + id,
		Total:     decimal.NewFromInt(5000),
		CreatedAt: time.Now(),
	}
	for i := 0; i < itemCount; i++ {
		store.items[id] = append(store.items[id], orders.LineItem{
			OrderID:  id,
			Name:     "Item",
			Quantity: 1,
			Subtotal: decimal.NewFromInt(5000),
		})
	}
}

func postJSON(t *testing.T, h gin.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	h(c)
	return w
}

func TestEnqueueJob_CreatesPendingJob(t *testing.T) {
	store := newFakeJobStore()
	addOrder(store, "o1", 2)
	h := newTestHandler(store, &fakeDispatcher{})

	w := postJSON(t, h.EnqueueJob, "/api/v1/print-jobs", dto.EnqueueJobRequest{
		OrderID:     "o1",
		Type:        "kitchen",
		RequestedBy: "waiter-3",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var job printjob.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "o1", job.OrderID)
	assert.Equal(t, printjob.StatusPending, job.Status)
	assert.Equal(t, printjob.TargetKitchen, job.Target, "kitchen type defaults to kitchen printer")
	assert.Equal(t, 1, store.createdCount())
}

func TestEnqueueJob_ReceiptDefaultsToCashier(t *testing.T) {
	store := newFakeJobStore()
	addOrder(store, "o1", 1)
	h := newTestHandler(store, &fakeDispatcher{})

	w := postJSON(t, h.EnqueueJob, "/api/v1/print-jobs", dto.EnqueueJobRequest{
		OrderID: "o1",
		Type:    "receipt",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var job printjob.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, printjob.TargetCashier, job.Target)
}

func TestEnqueueJob_UnknownOrder(t *testing.T) {
	store := newFakeJobStore()
	h := newTestHandler(store, &fakeDispatcher{})

	w := postJSON(t, h.EnqueueJob, "/api/v1/print-jobs", dto.EnqueueJobRequest{
		OrderID: "ghost",
		Type:    "kitchen",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, store.createdCount())
}

func TestEnqueueJob_EmptyOrderRejected(t *testing.T) {
	store := newFakeJobStore()
	addOrder(store, "o1", 0)
	h := newTestHandler(store, &fakeDispatcher{})

	w := postJSON(t, h.EnqueueJob, "/api/v1/print-jobs", dto.EnqueueJobRequest{
		OrderID: "o1",
		Type:    "kitchen",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, store.createdCount(), "nothing may be persisted for an empty order")
}

func TestEnqueueJob_InvalidType(t *testing.T) {
	store := newFakeJobStore()
	addOrder(store, "o1", 1)
	h := newTestHandler(store, &fakeDispatcher{})

	w := postJSON(t, h.EnqueueJob, "/api/v1/print-jobs", dto.EnqueueJobRequest{
		OrderID: "o1",
		Type:    "poster",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetryJob_OnlyFromFailed(t *testing.T) {
	store := newFakeJobStore()
	addOrder(store, "o1", 1)
	h := newTestHandler(store, &fakeDispatcher{})

	failed := &printjob.Job{
		ID:      "j-failed",
		OrderID: "o1",
		Type:    printjob.TypeKitchen,
		Target:  printjob.TargetKitchen,
		Status:  printjob.StatusFailed,
	}
	completed := &printjob.Job{
		ID:      "j-done",
		OrderID: "o1",
		Type:    printjob.TypeKitchen,
		Target:  printjob.TargetKitchen,
		Status:  printjob.StatusCompleted,
	}
	store.jobs[failed.ID] = failed
	store.jobs[completed.ID] = completed

	retryCall := func(jobID string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/print-jobs/"+jobID+"/retry", nil)
		c.Params = gin.Params{{Key: "job_id", Value: jobID}}
		h.RetryJob(c)
		return w
	}

	w := retryCall("j-failed")
	require.Equal(t, http.StatusCreated, w.Code)

	var retry printjob.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &retry))
	assert.NotEqual(t, failed.ID, retry.ID, "retry is a fresh job, not a reset")
	assert.Equal(t, printjob.StatusPending, retry.Status)
	assert.Equal(t, failed.OrderID, retry.OrderID)

	w = retryCall("j-done")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = retryCall("ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrintNow_FireAndForget(t *testing.T) {
	store := newFakeJobStore()
	addOrder(store, "o1", 1)
	dispatcher := &fakeDispatcher{done: make(chan struct{})}
	h := newTestHandler(store, dispatcher)

	w := postJSON(t, h.PrintNow, "/api/v1/print-now", dto.PrintNowRequest{
		OrderID: "o1",
		Type:    "receipt",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, store.createdCount(), "print-now never records a job")

	select {
	case <-dispatcher.done:
	case <-time.After(time.Second):
		t.Fatal("dispatch was not invoked")
	}
}

func TestPrintNow_UnknownOrderStillAccepted(t *testing.T) {
	store := newFakeJobStore()
	h := newTestHandler(store, &fakeDispatcher{})

	w := postJSON(t, h.PrintNow, "/api/v1/print-now", dto.PrintNowRequest{
		OrderID: "ghost",
		Type:    "receipt",
	})

	// The order lookup happens in the background; the caller never waits.
	assert.Equal(t, http.StatusOK, w.Code)
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fondaapp/print-fulfillment/internal/api/dto"
	"github.com/fondaapp/print-fulfillment/internal/printjob"
)

const publishTimeout = 5 * time.Second

// PrintHandler handles print job HTTP requests.
type PrintHandler struct {
	logger     *slog.Logger
	store      JobStore
	publisher  Publisher
	dispatcher Dispatcher
}

// NewPrintHandler creates a new PrintHandler instance.
func NewPrintHandler(deps *Dependencies) *PrintHandler {
	return &PrintHandler{
		logger:     deps.Logger,
		store:      deps.Store,
		publisher:  deps.Publisher,
		dispatcher: deps.Dispatcher,
	}
}

// EnqueueJob handles POST /api/v1/print-jobs
// Validates the order and records a pending job for the executor to pick up.
func (h *PrintHandler) EnqueueJob(c *gin.Context) {
	var req dto.EnqueueJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	jobType, target, ok := h.resolveRouting(c, req.Type, req.PrinterTarget)
	if !ok {
		return
	}
	if !h.validateOrder(c, req.OrderID) {
		return
	}

	job := &printjob.Job{
		ID:          uuid.New().String(),
		OrderID:     req.OrderID,
		Type:        jobType,
		Target:      target,
		Status:      printjob.StatusPending,
		RequestedBy: req.RequestedBy,
		CreatedAt:   time.Now(),
	}

	if err := h.store.CreateJob(c.Request.Context(), job); err != nil {
		h.logger.Error("failed to create print job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create print job",
		})
		return
	}

	// Best-effort latency nudge. The job is durable either way.
	if h.publisher != nil {
		go func(jobID string) {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := h.publisher.PublishJobCreated(ctx, jobID); err != nil {
				h.logger.Warn("failed to publish job notification",
					slog.String("job_id", jobID),
					slog.String("error", err.Error()),
				)
			}
		}(job.ID)
	}

	c.JSON(http.StatusCreated, job)
}

// GetJob handles GET /api/v1/print-jobs/:job_id
func (h *PrintHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.store.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, printjob.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "print job not found",
			})
			return
		}
		h.logger.Error("failed to get print job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to get print job",
		})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs handles GET /api/v1/print-jobs
// Operator inspection endpoint with optional status and order filters.
func (h *PrintHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 200 {
		req.Limit = 200
	}

	var status printjob.Status
	if req.Status != "" {
		switch printjob.Status(req.Status) {
		case printjob.StatusPending, printjob.StatusProcessing, printjob.StatusCompleted, printjob.StatusFailed:
			status = printjob.Status(req.Status)
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid status filter",
			})
			return
		}
	}

	jobs, err := h.store.ListJobs(c.Request.Context(), status, req.OrderID, req.Limit)
	if err != nil {
		h.logger.Error("failed to list print jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to list print jobs",
		})
		return
	}
	if jobs == nil {
		jobs = []printjob.Job{}
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{Jobs: jobs})
}

// RetryJob handles POST /api/v1/print-jobs/:job_id/retry
// A failed job is never re-enqueued in place; retry records a fresh pending
// job pointing at the same order.
func (h *PrintHandler) RetryJob(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.store.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, printjob.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "print job not found",
			})
			return
		}
		h.logger.Error("failed to get print job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to get print job",
		})
		return
	}

	if job.Status != printjob.StatusFailed {
		c.JSON(http.StatusConflict, gin.H{
			"error": "only failed jobs can be retried",
		})
		return
	}

	retry := &printjob.Job{
		ID:          uuid.New().String(),
		OrderID:     job.OrderID,
		Type:        job.Type,
		Target:      job.Target,
		Status:      printjob.StatusPending,
		RequestedBy: job.RequestedBy,
		CreatedAt:   time.Now(),
	}

	if err := h.store.CreateJob(c.Request.Context(), retry); err != nil {
		h.logger.Error("failed to create retry job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create retry job",
		})
		return
	}

	c.JSON(http.StatusCreated, retry)
}

// PrintNow handles POST /api/v1/print-now
// Fire and forget: the request is validated, the physical print runs in the
// background and its outcome is only logged. No job record is created.
func (h *PrintHandler) PrintNow(c *gin.Context) {
	var req dto.PrintNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	jobType, target, ok := h.resolveRouting(c, req.Type, req.PrinterTarget)
	if !ok {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		order, err := h.store.GetOrder(ctx, req.OrderID)
		if err != nil {
			h.logger.Error("print-now: failed to load order",
				slog.String("order_id", req.OrderID),
				slog.String("error", err.Error()),
			)
			return
		}

		items, err := h.store.ListOrderItems(ctx, req.OrderID)
		if err != nil {
			h.logger.Error("print-now: failed to load order items",
				slog.String("order_id", req.OrderID),
				slog.String("error", err.Error()),
			)
			return
		}

		if err := h.dispatcher.Dispatch(jobType, target, order, items); err != nil {
			h.logger.Error("print-now: dispatch failed",
				slog.String("order_id", req.OrderID),
				slog.String("target", string(target)),
				slog.String("error", err.Error()),
			)
		}
	}()

	c.JSON(http.StatusOK, gin.H{
		"status": "accepted",
	})
}

// resolveRouting parses the job type and picks the printer target, falling
// back to the type's default when the request names none.
func (h *PrintHandler) resolveRouting(c *gin.Context, rawType, rawTarget string) (printjob.Type, printjob.Target, bool) {
	jobType, err := printjob.ParseType(rawType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return "", "", false
	}

	target := jobType.DefaultTarget()
	if rawTarget != "" {
		target, err = printjob.ParseTarget(rawTarget)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return "", "", false
		}
	}
	return jobType, target, true
}

// validateOrder rejects enqueues for unknown or empty orders before anything
// is persisted.
func (h *PrintHandler) validateOrder(c *gin.Context, orderID string) bool {
	if _, err := h.store.GetOrder(c.Request.Context(), orderID); err != nil {
		if errors.Is(err, printjob.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "order not found",
			})
			return false
		}
		h.logger.Error("failed to load order", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to load order",
		})
		return false
	}

	items, err := h.store.ListOrderItems(c.Request.Context(), orderID)
	if err != nil {
		h.logger.Error("failed to load order items", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to load order items",
		})
		return false
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": printjob.ErrOrderEmpty.Error(),
		})
		return false
	}
	return true
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fondaapp/print-fulfillment/internal/api/dto"
	"github.com/fondaapp/print-fulfillment/internal/tips"
)

// TipsHandler handles tip distribution HTTP requests.
type TipsHandler struct {
	logger *slog.Logger
	tips   TipService
}

// NewTipsHandler creates a new TipsHandler instance.
func NewTipsHandler(deps *Dependencies) *TipsHandler {
	return &TipsHandler{
		logger: deps.Logger,
		tips:   deps.Tips,
	}
}

// Distribute handles POST /api/v1/tips
// Splits an order's tip among the currently eligible employees.
func (h *TipsHandler) Distribute(c *gin.Context) {
	var req dto.DistributeTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() || amount.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "amount must be a positive decimal",
		})
		return
	}

	shares, err := h.tips.Distribute(c.Request.Context(), req.OrderID, amount, time.Now())
	if err != nil {
		if errors.Is(err, tips.ErrNoRecipients) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "no tip-eligible employees",
			})
			return
		}
		h.logger.Error("failed to distribute tip", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to distribute tip",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": req.OrderID,
		"shares":   shares,
	})
}

// Totals handles GET /api/v1/tips/summary
// Aggregated per-employee amounts for the week, month or year containing the
// given date (today when absent).
func (h *TipsHandler) Totals(c *gin.Context) {
	var req dto.TipTotalsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid query parameters",
		})
		return
	}

	switch req.Period {
	case "":
		req.Period = "week"
	case "week", "month", "year":
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "period must be week, month or year",
		})
		return
	}

	at := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "date must be YYYY-MM-DD",
			})
			return
		}
		at = parsed
	}

	totals, err := h.tips.Totals(c.Request.Context(), req.Period, at)
	if err != nil {
		h.logger.Error("failed to aggregate tips", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to aggregate tips",
		})
		return
	}
	if totals == nil {
		totals = []tips.Total{}
	}

	c.JSON(http.StatusOK, gin.H{
		"period": req.Period,
		"totals": totals,
	})
}

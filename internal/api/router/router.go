package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fondaapp/print-fulfillment/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes.
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "print-api-service",
		})
	})

	printHandler := handler.NewPrintHandler(deps)
	tipsHandler := handler.NewTipsHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/print-jobs")
		{
			// POST /api/v1/print-jobs - Enqueue a print job
			jobs.POST("", printHandler.EnqueueJob)

			// GET /api/v1/print-jobs - List jobs with filtering
			jobs.GET("", printHandler.ListJobs)

			// GET /api/v1/print-jobs/:job_id - Get job details
			jobs.GET("/:job_id", printHandler.GetJob)

			// POST /api/v1/print-jobs/:job_id/retry - Retry a failed job
			jobs.POST("/:job_id/retry", printHandler.RetryJob)
		}

		// POST /api/v1/print-now - Immediate fire-and-forget print
		v1.POST("/print-now", printHandler.PrintNow)

		tipRoutes := v1.Group("/tips")
		{
			// POST /api/v1/tips - Distribute a tip
			tipRoutes.POST("", tipsHandler.Distribute)

			// GET /api/v1/tips/summary - Per-employee totals for a period
			tipRoutes.GET("/summary", tipsHandler.Totals)
		}
	}

	return r
}

package router

import (
	"github.com/gin-gonic/gin"

	"finextract/internal/handler"
	"finextract/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	extractionH *handler.ExtractionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	extractions := v1.Group("/extractions")
	extractions.POST("", extractionH.Submit)
	extractions.GET("", extractionH.List)
	extractions.GET("/:id", extractionH.GetByID)
	extractions.GET("/:id/transactions", extractionH.SearchTransactions)
	extractions.GET("/:id/export", extractionH.Export)
	extractions.GET("/:id/source", extractionH.Source)
	extractions.DELETE("/:id", extractionH.Delete)

	return r
}

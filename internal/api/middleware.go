package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/films/internal/metrics"
)

// MetricsMiddleware counts requests and their latency per route template.
func MetricsMiddleware(provider *metrics.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := provider.TrackRequest(c.Request.Method)
		c.Next()
		done(c.FullPath(), c.Writer.Status())
	}
}

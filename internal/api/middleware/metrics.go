package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"audioscribe/internal/metrics"
)

// HTTPMetrics records request counts and latency. The route template is
// used as the path label so ids do not blow up cardinality.
func HTTPMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

package mw

import (
	"time"

	"github.com/gin-gonic/gin"

	"resort-facilities-backend/internal/metrics"
)

// Metrics records the latency of every request by its route pattern.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

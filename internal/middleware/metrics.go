package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bookkeeper/internal/metrics"
)

// Metrics records the latency of every request by method, route
// template and status code. Unmatched routes are recorded as "unmatched".
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

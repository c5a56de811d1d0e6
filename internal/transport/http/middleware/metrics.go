package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records latency and counts per route template. Requests that match
// no route share one "unmatched" label, and CORS preflights are skipped.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		metrics.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	}
}

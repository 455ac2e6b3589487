package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(method, path, status, time.Since(start))
	}
}

// Timer measures a logical upstream call
type Timer struct {
	start      time.Time
	metrics    *Metrics
	dependency string
	operation  string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, dependency, operation string) *Timer {
	return &Timer{
		start:      time.Now(),
		metrics:    metrics,
		dependency: dependency,
		operation:  operation,
	}
}

// Stop records the duration and attempts spent
func (t *Timer) Stop(attempts int) {
	t.metrics.RecordUpstreamCall(t.dependency, t.operation, attempts, time.Since(t.start))
}

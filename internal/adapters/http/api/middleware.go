package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/midwicket/pavilion/pkg/metrics"
)

// Metrics records Prometheus metrics for one endpoint.
func Metrics(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		statusCode := strconv.Itoa(status)
		durationMs := float64(time.Since(start).Milliseconds())

		metrics.RecordHTTPRequest(endpoint, c.Request.Method, statusCode)
		metrics.RecordHTTPRequestDuration(endpoint, c.Request.Method, statusCode, durationMs)

		if status >= http.StatusBadRequest {
			metrics.RecordErrorByEndpoint(endpoint, c.Request.Method, errorType(status))
		}
	}
}

// errorType returns a standardized error class for an HTTP status code.
func errorType(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

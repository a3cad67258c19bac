package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/registrar-api/internal/service"
)

// Metrics records duration and count for each served request. Scrapes of
// /metrics are not observed, and requests that matched no registered route
// share a single path label so unknown URLs do not mint new label values.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

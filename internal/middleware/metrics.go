package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/districtops/transport-api/internal/service"
)

// Metrics observes every request's method, route, status and duration.
// Unmatched routes are recorded under their raw path so 404 scans stay
// visible without exploding label cardinality on real routes.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

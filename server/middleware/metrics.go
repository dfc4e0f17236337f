package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/depdep/observability"
)

// Metrics records the count and duration of every request, labeled with
// the matched route pattern. Unmatched requests use the route "unmatched".
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

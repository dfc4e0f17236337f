package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/depdep/logger"
)

var healthPaths = map[string]bool{
	"/health": true,
}

// RequestLogger returns a Gin middleware that logs every request with method,
// path, status code, and duration. Health-check paths are silently skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if healthPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		fields := map[string]interface{}{
			logger.FieldMethod:   c.Request.Method,
			logger.FieldPath:     c.Request.URL.Path,
			logger.FieldStatus:   c.Writer.Status(),
			logger.FieldDuration: duration.Milliseconds(),
		}
		if id := GetRequestID(c); id != "" {
			fields[logger.FieldRequestID] = id
		}
		logByStatus(log, fields, c.Writer.Status())
	}
}

// logByStatus logs request fields at the appropriate level based on HTTP status code.
// If log is nil, the global logger is used.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}

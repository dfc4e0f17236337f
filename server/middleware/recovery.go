package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/depdep/errors"
	"github.com/kbukum/depdep/logger"
)

// Recovery returns a Gin middleware that recovers from panics and logs the stack.
// The client receives an INTERNAL_ERROR body.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered", map[string]interface{}{
					logger.FieldError:     fmt.Sprintf("%v", r),
					"stack":               string(debug.Stack()),
					logger.FieldPath:      c.Request.URL.Path,
					logger.FieldMethod:    c.Request.Method,
					logger.FieldRequestID: GetRequestID(c),
				})
				appErr := errors.Internal(fmt.Errorf("panic: %v", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, appErr.ToResponse(GetRequestID(c)))
			}
		}()
		c.Next()
	}
}

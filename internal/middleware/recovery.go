package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"foodify/internal/apperr"
)

// Recovery turns a panic into a 500 response with the usual error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				LoggerFrom(c).
					WithField("route", c.FullPath()).
					WithField("stack", string(debug.Stack())).
					Errorf("panic recovered: %v", r)
				apperr.Abort(c, apperr.Wrap(apperr.KindInternal, "Internal server error", fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}

package apperr

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var exposeInternal atomic.Bool

// ExposeInternalDetails controls whether internal error text reaches clients.
// It is enabled outside production only.
func ExposeInternalDetails(enabled bool) {
	exposeInternal.Store(enabled)
}

// Body renders the JSON payload for err.
func Body(err *Error) gin.H {
	body := gin.H{
		"message": err.Message,
		"error":   err.Kind,
	}
	if len(err.Details) > 0 {
		body["details"] = err.Details
	} else if exposeInternal.Load() && err.Err != nil && err.Status() >= 500 {
		body["details"] = err.Err.Error()
	}
	return body
}

// Abort writes err to the response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	appErr := From(err)
	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.Status(), Body(appErr))
}

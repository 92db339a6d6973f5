package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"

	contextRequestID = "requestId"
	contextLogger    = "logger"
)

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		entry := log.WithField("request_id", requestID)
		c.Set(contextRequestID, requestID)
		c.Set(contextLogger, entry)

		c.Next()

		fields := logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.WithFields(fields).Error("request failed")
		case status >= 400:
			entry.WithFields(fields).Warn("request rejected")
		default:
			entry.WithFields(fields).Info("request served")
		}
	}
}

// LoggerFrom returns the request-scoped logger, or the standard logger when
// RequestLogger is not installed.
func LoggerFrom(c *gin.Context) logrus.FieldLogger {
	if value, ok := c.Get(contextLogger); ok {
		if entry, ok := value.(logrus.FieldLogger); ok {
			return entry
		}
	}
	return logrus.StandardLogger()
}

func RequestID(c *gin.Context) string {
	return c.GetString(contextRequestID)
}

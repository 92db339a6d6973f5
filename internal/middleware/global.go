package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"foodify/internal/metrics"
)

// Global returns the router-wide middleware in order. Recovery sits inside
// the logger and metrics so a recovered panic is logged and counted as 500.
func Global(log logrus.FieldLogger, m *metrics.Metrics, allowedOrigins []string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		RequestLogger(log),
		Metrics(m),
		Recovery(),
		CORS(allowedOrigins),
	}
}

// internal/middleware/logger.go
// Request logging middleware with structured logs, adapted to zap.

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger creates a custom logging middleware.
func Logger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		logger.Infow("http request",
			"request_id", c.GetString("request_id"),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"status", c.Writer.Status(),
			"latency", latency,
			"path", path,
			"error", c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)
	}
}

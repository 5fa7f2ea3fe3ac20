package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs an audit entry after each successful roster write. Requests that
// end in an error status or carry a handler error are not recorded.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 || len(c.Errors) > 0 {
			return
		}

		operator := ""
		if sc, ok := SessionFromContext(c); ok {
			operator = sc.Session.Email
		}

		logger.Info("audit",
			zap.String("action", action),
			zap.String("operator", operator),
			zap.String("resource_id", c.Param("id")),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
		)
	}
}

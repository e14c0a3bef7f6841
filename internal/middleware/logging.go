package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookkeeper/internal/logger"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
)

// RequestLogging logs each request with Zap. A request ID supplied by the
// client is kept, otherwise a new one is generated and echoed back.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetString("userID"); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		if groupID := c.GetString("groupID"); groupID != "" {
			fields = append(fields, "group_id", groupID)
		}

		log := logger.Get()
		if c.Writer.Status() >= 500 {
			log.Errorw("request", fields...)
			return
		}
		log.Infow("request", fields...)
	}
}

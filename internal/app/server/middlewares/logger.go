package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mfgcopilot/pkg/logger"
)

// HeaderRequestID 请求 ID 头，缺失时生成
const HeaderRequestID = "X-Request-ID"

// Logger 请求日志中间件，同时把 request id 作为 trace_id 写入 Context
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), requestID))

		c.Next()

		log.Infof(c.Request.Context(), "[HTTP] %s %s %d %s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

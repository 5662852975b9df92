package middlewares

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"mfgcopilot/internal/app/pkg/ginx"
	"mfgcopilot/pkg/logger"
)

// RateLimit 进程级令牌桶限流；rps <= 0 时不限流
// rate.Limiter 自身并发安全
func RateLimit(rps float64, burst int, log logger.Logger) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.Warnf(c.Request.Context(), "[RateLimit] rejected %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			c.Header("Retry-After", "1")
			ginx.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}

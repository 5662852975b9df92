package middlewares

import (
	"context"
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/pkg/errorx"
	"mfgcopilot/internal/app/pkg/ginx"
	"mfgcopilot/pkg/logger"
)

// HeaderAPIKey API Key 请求头
const HeaderAPIKey = "X-API-Key"

// APIKeyAuth 校验 X-API-Key；keys 为空时为开发模式，全部放行
func APIKeyAuth(keys []string, log logger.Logger) gin.HandlerFunc {
	if len(keys) == 0 {
		log.Warnf(context.Background(), "[Auth] no api keys configured, authentication disabled (dev mode)")
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if !validKey(keys, c.GetHeader(HeaderAPIKey)) {
			log.Warnf(c.Request.Context(), "[Auth] rejected %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			ginx.Unauthorized(c, errorx.ErrUnauthorized.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

func validKey(keys []string, presented string) bool {
	if presented == "" {
		return false
	}
	ok := 0
	for _, k := range keys {
		ok |= subtle.ConstantTimeCompare([]byte(k), []byte(presented))
	}
	return ok == 1
}

package middlewares

import (
	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/pkg/ginx"
	"mfgcopilot/pkg/logger"
)

// ErrorHandler 统一错误处理中间件：panic 与未写出的 c.Errors 均转为 500 信封
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[ErrorHandler] panic recovered: %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				ginx.InternalError(c, "internal server error")
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			log.Errorf(c.Request.Context(), "[ErrorHandler] %s %s: %v", c.Request.Method, c.Request.URL.Path, err.Err)
			ginx.InternalError(c, err.Error())
		}
	}
}

package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/domains/apimodel/response"
	"mfgcopilot/internal/app/pkg/ginx"
	"mfgcopilot/internal/app/server/handlers/analysis"
	"mfgcopilot/internal/app/server/middlewares"
	"mfgcopilot/pkg/logger"
)

// Options 路由依赖的非 handler 配置
type Options struct {
	ServiceName string
	APIKeys     []string
	RateLimit   float64 // 每秒请求数，0 不限流
	RateBurst   int
	Logger      logger.Logger
}

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(analysisHandler *analysis.AnalysisHandler, opts Options) *gin.Engine {
	ginx.UseJSONFieldNames()
	r := gin.New()

	r.Use(middlewares.Logger(opts.Logger))
	r.Use(middlewares.ErrorHandler(opts.Logger))
	r.Use(middlewares.CORS())

	// 健康检查不鉴权
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.HealthResponse{
			Status:  "healthy",
			Service: opts.ServiceName,
		})
	})

	authed := r.Group("")
	// 先鉴权再限流，无效 Key 不消耗令牌
	authed.Use(middlewares.APIKeyAuth(opts.APIKeys, opts.Logger))
	authed.Use(middlewares.RateLimit(opts.RateLimit, opts.RateBurst, opts.Logger))
	{
		authed.POST("/analyze", analysisHandler.Analyze)
		authed.POST("/api/v2/analyze", analysisHandler.Analyze)

		analyses := authed.Group("/api/v1/analyses")
		{
			analyses.POST("", analysisHandler.Create)
			analyses.GET("/:id", analysisHandler.Get)
		}

		authed.GET("/api/dfm/costs/:process/:material", analysisHandler.Quote)
	}

	return r
}

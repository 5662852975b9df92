package domains

import (
	"context"

	"mfgcopilot/common/model"
	"mfgcopilot/internal/business/analysis"
	"mfgcopilot/internal/framework"
	"mfgcopilot/pkg/logger"
)

// Dependencies Handler 共享依赖（由 Manager 初始化一次）
type Dependencies struct {
	Analyzer analysis.Analyzer
	Reporter *analysis.Reporter
	Logger   logger.Logger
}

// HandlerFactory Handler 构造函数类型
type HandlerFactory func(
	ctx context.Context,
	baseHandler *framework.BaseHandler,
	deps *Dependencies,
) (framework.BusinessHandler, error)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]HandlerFactory{
	model.ActionTypeDFMAnalyze: newAnalyzeHandler,
}

func newAnalyzeHandler(ctx context.Context, baseHandler *framework.BaseHandler, deps *Dependencies) (framework.BusinessHandler, error) {
	return analysis.NewAnalyzeHandler(ctx, baseHandler, deps.Analyzer, deps.Reporter, deps.Logger)
}

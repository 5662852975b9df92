package analysis

import (
	"mfgcopilot/internal/app/domains/services/svanalysis"
	"mfgcopilot/pkg/logger"
)

// AnalysisHandler 分析 HTTP 处理器
type AnalysisHandler struct {
	analysisService *svanalysis.AnalysisService
	logger          logger.Logger
}

// NewAnalysisHandler 创建分析处理器实例
func NewAnalysisHandler(analysisService *svanalysis.AnalysisService, log logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          log,
	}
}

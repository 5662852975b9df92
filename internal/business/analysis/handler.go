package analysis

import (
	"context"
	"errors"

	"mfgcopilot/common/model"
	"mfgcopilot/internal/business/fallback"
	"mfgcopilot/internal/framework"
	"mfgcopilot/pkg/errorutil"
	"mfgcopilot/pkg/infra/mysql"
	"mfgcopilot/pkg/logger"
)

// AnalyzeHandler DFM 分析任务处理器
type AnalyzeHandler struct {
	framework.BaseHandler

	payload  *model.AnalyzeRequest
	analyzer Analyzer
	reporter *Reporter
	logger   logger.Logger
	outcome  *fallback.Outcome
}

// NewAnalyzeHandler 创建分析处理器
func NewAnalyzeHandler(
	ctx context.Context,
	baseHandler *framework.BaseHandler,
	analyzer Analyzer,
	reporter *Reporter,
	log logger.Logger,
) (framework.BusinessHandler, error) {
	var payload model.AnalyzeRequest
	if err := baseHandler.DecodePayload(&payload); err != nil {
		return nil, errorutil.NonRetriable("decode analyze payload", err)
	}

	handler := &AnalyzeHandler{
		BaseHandler: *baseHandler,
		payload:     &payload,
		analyzer:    analyzer,
		reporter:    reporter,
		logger:      log,
	}

	handler.SetResulter(NewAnalysisResulter())

	return handler, nil
}

// Handle 处理入口
func (h *AnalyzeHandler) Handle(ctx context.Context) ([]byte, error) {
	preProcessor := framework.NewPreProcessor(
		framework.Stage{Name: "pre", Fn: h.PreProcess},
		framework.Stage{Name: "analyze", Fn: h.Process},
		framework.Stage{Name: "report", Fn: h.PostProcess},
	)
	if err := preProcessor.Run(ctx); err != nil {
		h.recordFailure(ctx, err)
		return h.WrapErrorResponse(ctx, err)
	}

	output := h.GetOutput()
	return h.WrapResponse(ctx, output)
}

// recordFailure 不可重试的失败落库为 FAILED，避免调用方一直等待
func (h *AnalyzeHandler) recordFailure(ctx context.Context, err error) {
	if errorutil.IsRetryable(err) || errors.Is(err, mysql.ErrAnalysisNotFound) || h.GetMeta().ID == "" {
		return
	}
	if reportErr := h.reporter.ReportFailure(ctx, h.GetMeta(), err); reportErr != nil {
		h.logger.Errorf(ctx, "[AnalyzeHandler] mark failed error, analysis_id=%s: %v", h.GetMeta().ID, reportErr)
	}
}

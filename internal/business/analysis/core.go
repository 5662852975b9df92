package analysis

import (
	"context"
	"errors"
	"time"

	"mfgcopilot/internal/business/dfm"
	"mfgcopilot/internal/business/fallback"
	"mfgcopilot/pkg/errorutil"
	"mfgcopilot/pkg/infra/mysql"
)

// PreProcess 预处理
func (h *AnalyzeHandler) PreProcess(ctx context.Context) error {
	if h.GetMeta().ID == "" {
		return errorutil.NonRetriable("analysis id is required", nil)
	}
	if len(h.payload.CADData) == 0 {
		return errorutil.NonRetriable("cad_data is required", nil)
	}
	if h.payload.ProductionVolume != nil && *h.payload.ProductionVolume <= 0 {
		return errorutil.NonRetriable("production_volume must be positive", nil)
	}
	return nil
}

// Process 核心处理：远端优先，本地兜底
func (h *AnalyzeHandler) Process(ctx context.Context) error {
	input := &fallback.AnalyzeInput{
		CADData: h.payload.CADData,
		Request: dfm.ManufacturingRequest{
			Material:         dfm.MaterialKind(h.payload.Material),
			Process:          dfm.ProcessKind(h.payload.Process),
			ProductionVolume: h.payload.Quantity(),
			UseAdvancedDFM:   h.payload.AdvancedAnalysis,
		},
	}

	outcome, err := h.analyzer.Run(ctx, input)
	if err != nil {
		return errorutil.NonRetriable("analyze", err)
	}

	h.outcome = outcome
	return nil
}

// PostProcess 后处理：格式化输出并上报
func (h *AnalyzeHandler) PostProcess(ctx context.Context) error {
	err := h.GetResulter().Set(ctx, &AnalysisResultData{
		AnalysisID:  h.GetMeta().ID,
		Outcome:     h.outcome,
		ProcessedAt: time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	output := h.GetResulter().Get(ctx)
	h.SetOutput(output)

	if err := h.reporter.ReportSuccess(ctx, h.GetMeta(), h.outcome); err != nil {
		if errors.Is(err, mysql.ErrAnalysisNotFound) {
			return errorutil.NonRetriable("save result", err)
		}
		return errorutil.Retriable("save result", err)
	}
	return nil
}

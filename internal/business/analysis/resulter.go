package analysis

import (
	"context"
	"fmt"
)

// AnalysisResulter 分析结果处理器
type AnalysisResulter struct {
	dstData *AnalysisOutput
}

// NewAnalysisResulter 创建分析结果处理器
func NewAnalysisResulter() *AnalysisResulter {
	return &AnalysisResulter{}
}

// Set 设置业务结果数据
func (r *AnalysisResulter) Set(ctx context.Context, data interface{}) error {
	resultData, ok := data.(*AnalysisResultData)
	if !ok || resultData.Outcome == nil || resultData.Outcome.Result == nil {
		return fmt.Errorf("unexpected result data %T", data)
	}

	outcome := resultData.Outcome
	r.dstData = &AnalysisOutput{
		AnalysisID:  resultData.AnalysisID,
		Source:      outcome.Source,
		Score:       outcome.Result.ManufacturabilityScore,
		Rating:      outcome.Result.OverallRating,
		Degraded:    outcome.Result.Degraded,
		Trace:       outcome.Trace,
		ElapsedMS:   outcome.Elapsed.Milliseconds(),
		ProcessedAt: resultData.ProcessedAt,
	}
	return nil
}

// Get 获取格式化后的输出
func (r *AnalysisResulter) Get(ctx context.Context) interface{} {
	return r.dstData
}

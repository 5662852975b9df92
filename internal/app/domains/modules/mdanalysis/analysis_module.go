package mdanalysis

import (
	"context"

	"mfgcopilot/internal/app/domains/entity/etanalysis"
	"mfgcopilot/internal/app/domains/repo/rpanalysis"
)

// AnalysisModule 分析记录模块（数据操作）
type AnalysisModule struct {
	analysisRepo rpanalysis.AnalysisRepository
}

// NewAnalysisModule 创建分析记录模块
func NewAnalysisModule(analysisRepo rpanalysis.AnalysisRepository) *AnalysisModule {
	return &AnalysisModule{analysisRepo: analysisRepo}
}

// Create 创建分析记录
func (m *AnalysisModule) Create(ctx context.Context, analysis *etanalysis.Analysis) error {
	return m.analysisRepo.Create(ctx, analysis)
}

// MarkFailed 标记失败并落库
func (m *AnalysisModule) MarkFailed(ctx context.Context, analysis *etanalysis.Analysis, msg string) error {
	analysis.MarkAsFailed(msg)
	return m.analysisRepo.UpdateStatus(ctx, analysis)
}

// GetByID 查询分析记录
func (m *AnalysisModule) GetByID(ctx context.Context, analysisID string) (*etanalysis.Analysis, error) {
	return m.analysisRepo.GetByID(ctx, analysisID)
}

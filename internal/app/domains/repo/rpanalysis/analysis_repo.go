package rpanalysis

import (
	"context"
	"errors"

	"mfgcopilot/internal/app/domains/entity/etanalysis"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("analysis not found")

// AnalysisRepository 分析记录仓储接口
// 实现见 analysis_repo_impl.go（MySQL）
type AnalysisRepository interface {
	// Create 创建分析记录（PENDING）
	Create(ctx context.Context, analysis *etanalysis.Analysis) error

	// UpdateStatus 更新状态与错误信息；不存在返回 ErrNotFound
	UpdateStatus(ctx context.Context, analysis *etanalysis.Analysis) error

	// GetByID 根据 ID 查询；不存在返回 ErrNotFound
	GetByID(ctx context.Context, analysisID string) (*etanalysis.Analysis, error)
}

package analysis

import (
	"context"

	"mfgcopilot/common/model"
	"mfgcopilot/internal/business/dfm"
	"mfgcopilot/internal/business/fallback"
)

// Analyzer 分析编排（由 fallback.Orchestrator 实现）
type Analyzer interface {
	Run(ctx context.Context, in *fallback.AnalyzeInput) (*fallback.Outcome, error)
}

// ResultStore 分析记录持久化（由 mysql.AnalysisDAO 实现）
type ResultStore interface {
	SaveResult(ctx context.Context, analysisID string, result *dfm.AnalysisResult) error
	MarkFailed(ctx context.Context, analysisID string, errorMsg string) error
}

// Notifier 完成通知（由 redis.PubSub 实现）
type Notifier interface {
	PublishAnalysisComplete(ctx context.Context, notification *model.AnalysisNotification) error
}

// AnalysisResultData 业务处理结果
type AnalysisResultData struct {
	AnalysisID  string
	Outcome     *fallback.Outcome
	ProcessedAt int64
}

// AnalysisOutput 最终输出结构（写入 Job 响应，用于日志）
type AnalysisOutput struct {
	AnalysisID  string           `json:"analysis_id"`
	Source      dfm.Source       `json:"source"`
	Score       int              `json:"manufacturability_score"`
	Rating      dfm.Rating       `json:"overall_rating"`
	Degraded    bool             `json:"degraded,omitempty"`
	Trace       []fallback.State `json:"trace"`
	ElapsedMS   int64            `json:"elapsed_ms"`
	ProcessedAt int64            `json:"processed_at"`
}

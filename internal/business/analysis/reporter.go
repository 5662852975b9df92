package analysis

import (
	"context"
	"time"

	"mfgcopilot/common/entity"
	"mfgcopilot/common/model"
	"mfgcopilot/internal/business/fallback"
	"mfgcopilot/internal/framework"
	"mfgcopilot/pkg/logger"
)

// Reporter 结果上报：写库 → 发布完成通知
// 写库失败返回错误由上层决定是否重试；通知失败只记日志，apiserver 仍可通过轮询拿到结果
type Reporter struct {
	store    ResultStore
	notifier Notifier
	logger   logger.Logger
}

// NewReporter 创建结果上报实例
func NewReporter(store ResultStore, notifier Notifier, log logger.Logger) *Reporter {
	return &Reporter{store: store, notifier: notifier, logger: log}
}

// ReportSuccess 保存分析结果并通知
func (r *Reporter) ReportSuccess(ctx context.Context, meta *framework.JobMeta, outcome *fallback.Outcome) error {
	if err := r.store.SaveResult(ctx, meta.ID, outcome.Result); err != nil {
		return err
	}

	r.notify(ctx, &model.AnalysisNotification{
		RequestID:   meta.RequestID,
		AnalysisID:  meta.ID,
		Status:      entity.AnalysisStatusDone,
		Source:      string(outcome.Source),
		ProcessedAt: time.Now().Unix(),
	})
	return nil
}

// ReportFailure 标记失败并通知
func (r *Reporter) ReportFailure(ctx context.Context, meta *framework.JobMeta, cause error) error {
	if err := r.store.MarkFailed(ctx, meta.ID, cause.Error()); err != nil {
		return err
	}

	r.notify(ctx, &model.AnalysisNotification{
		RequestID:   meta.RequestID,
		AnalysisID:  meta.ID,
		Status:      entity.AnalysisStatusFailed,
		Error:       cause.Error(),
		ProcessedAt: time.Now().Unix(),
	})
	return nil
}

func (r *Reporter) notify(ctx context.Context, n *model.AnalysisNotification) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.PublishAnalysisComplete(ctx, n); err != nil {
		r.logger.Warnf(ctx, "[Reporter] publish notification failed, analysis_id=%s: %v", n.AnalysisID, err)
	}
}

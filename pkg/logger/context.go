package logger

import "context"

type ctxKey string

const (
	traceIDKey    ctxKey = "trace_id"
	workerIDKey   ctxKey = "worker_id"
	actionTypeKey ctxKey = "action_type"
	analysisIDKey ctxKey = "analysis_id"
)

// WithTraceID 写入链路 ID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID 读取链路 ID
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// WithWorkerID 写入 worker 编号
func WithWorkerID(ctx context.Context, workerID int) context.Context {
	return context.WithValue(ctx, workerIDKey, workerID)
}

// WithActionType 写入任务类型
func WithActionType(ctx context.Context, actionType string) context.Context {
	return context.WithValue(ctx, actionTypeKey, actionType)
}

// WithAnalysisID 写入分析记录 ID
func WithAnalysisID(ctx context.Context, analysisID string) context.Context {
	return context.WithValue(ctx, analysisIDKey, analysisID)
}

package model

// AnalysisNotification 分析完成通知
// worker 写库后发布到 Redis 频道 {prefix}{analysis_id}，apiserver 的 Smart Wait 订阅
type AnalysisNotification struct {
	RequestID   string `json:"request_id"`
	AnalysisID  string `json:"analysis_id"`
	Status      string `json:"status"` // DONE / FAILED
	Source      string `json:"source,omitempty"`
	Error       string `json:"error,omitempty"`
	ProcessedAt int64  `json:"processed_at"` // Unix timestamp
}

// ResultChannel 结果通知频道名
func ResultChannel(prefix, analysisID string) string {
	if prefix == "" {
		prefix = "analysis:result:"
	}
	return prefix + analysisID
}

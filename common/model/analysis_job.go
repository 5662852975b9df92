package model

import "encoding/json"

// ActionTypeDFMAnalyze 分析任务路由键
const ActionTypeDFMAnalyze = "dfm_analyze"

// AnalyzeRequest 分析任务业务数据
type AnalyzeRequest struct {
	CADData          json.RawMessage `json:"cad_data"`
	Material         string          `json:"material,omitempty"`
	Process          string          `json:"process,omitempty"`
	ProductionVolume *int            `json:"production_volume,omitempty"`
	AdvancedAnalysis bool            `json:"advanced_analysis"`
}

// Quantity 未填写时按 1 件计
func (r *AnalyzeRequest) Quantity() int {
	if r.ProductionVolume == nil {
		return 1
	}
	return *r.ProductionVolume
}

// AnalysisJob 分析任务消息
// 用于 apiserver → worker 的消息传递
type AnalysisJob struct {
	Payload AnalysisJobPayload `json:"payload"`
}

// AnalysisJobPayload Job 负载
type AnalysisJobPayload struct {
	Data AnalysisJobData `json:"data"`
}

// AnalysisJobData Job 数据层
type AnalysisJobData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（全链路追踪）
	OrgID      string `json:"org_id"`      // 组织 ID
	ActionType string `json:"action_type"` // 固定值 "dfm_analyze"
	ID         string `json:"id"`          // 分析记录 ID

	// 业务数据，worker 无需回查 DB
	Data AnalyzeRequest `json:"data"`
}

// NewAnalysisJob 构造任务消息
func NewAnalysisJob(requestID, analysisID string, req AnalyzeRequest) *AnalysisJob {
	return &AnalysisJob{
		Payload: AnalysisJobPayload{
			Data: AnalysisJobData{
				RequestID:  requestID,
				OrgID:      "0",
				ActionType: ActionTypeDFMAnalyze,
				ID:         analysisID,
				Data:       req,
			},
		},
	}
}

package response

import (
	"time"

	"mfgcopilot/internal/business/dfm"
)

// AnalysisResponse 分析记录响应（DTO）
type AnalysisResponse struct {
	ID        string              `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RequestID string              `json:"request_id"`
	Status    string              `json:"status" example:"DONE"`
	Source    string              `json:"source,omitempty" example:"local_fallback"`
	Request   *AnalysisRequest    `json:"request"`
	Result    *dfm.AnalysisResult `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// AnalysisRequest 分析参数（DTO，不回显 CAD 数据）
type AnalysisRequest struct {
	Material         string `json:"material"`
	Process          string `json:"process"`
	ProductionVolume int    `json:"production_volume"`
	AdvancedAnalysis bool   `json:"advanced_analysis"`
}

// HealthResponse 健康检查响应，格式与远端健康探测一致
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service"`
}

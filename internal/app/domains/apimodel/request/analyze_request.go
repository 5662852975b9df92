package request

import "encoding/json"

// AnalyzeRequest 分析请求
type AnalyzeRequest struct {
	CADData          json.RawMessage `json:"cad_data" binding:"required"`
	Material         string          `json:"material" binding:"omitempty,max=32" example:"PLA"`
	Process          string          `json:"process" binding:"omitempty,max=32" example:"FDM_PRINTING"`
	ProductionVolume *int            `json:"production_volume" binding:"omitempty,gt=0" example:"100"`
	AdvancedAnalysis bool            `json:"advanced_analysis" example:"true"`
}

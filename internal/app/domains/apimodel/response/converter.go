package response

import "mfgcopilot/internal/app/domains/entity/etanalysis"

// FromAnalysisEntity 从领域对象转换为响应 DTO
func FromAnalysisEntity(a *etanalysis.Analysis) *AnalysisResponse {
	resp := &AnalysisResponse{
		ID:        a.ID,
		RequestID: a.RequestID,
		Status:    string(a.Status),
		Source:    string(a.Source),
		Result:    a.Result,
		Error:     a.ErrorMessage,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}

	if a.Request != nil {
		resp.Request = &AnalysisRequest{
			Material:         a.Request.Material,
			Process:          a.Request.Process,
			ProductionVolume: a.Request.ProductionVolume,
			AdvancedAnalysis: a.Request.AdvancedAnalysis,
		}
	}

	return resp
}

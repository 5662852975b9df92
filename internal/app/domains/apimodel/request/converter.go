package request

import (
	"mfgcopilot/common/model"
	"mfgcopilot/internal/app/domains/entity/etanalysis"
)

// ToAnalysisRequest 将 Request DTO 转换为领域对象
func (r *AnalyzeRequest) ToAnalysisRequest() *etanalysis.Request {
	volume := 1
	if r.ProductionVolume != nil {
		volume = *r.ProductionVolume
	}
	return &etanalysis.Request{
		CADData:          r.CADData,
		Material:         r.Material,
		Process:          r.Process,
		ProductionVolume: volume,
		AdvancedAnalysis: r.AdvancedAnalysis,
	}
}

// ToJobData 领域对象转换为队列业务数据
func ToJobData(req *etanalysis.Request) model.AnalyzeRequest {
	volume := req.ProductionVolume
	return model.AnalyzeRequest{
		CADData:          req.CADData,
		Material:         req.Material,
		Process:          req.Process,
		ProductionVolume: &volume,
		AdvancedAnalysis: req.AdvancedAnalysis,
	}
}

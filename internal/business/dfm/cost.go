package dfm

import (
	"fmt"
	"math"
)

const (
	// machineHoursPer100CM3 每 100 cm³ 的机时
	machineHoursPer100CM3 = 0.5
	unknownFacetFactor    = 0.3
	facetSaturation       = 5000.0
)

// CostEstimator 成本估算器
type CostEstimator struct {
	cfg *Config
}

// NewCostEstimator 创建成本估算器实例
func NewCostEstimator(cfg *Config) *CostEstimator {
	return &CostEstimator{cfg: cfg}
}

// Estimate 估算单件成本与区间；问题的 CostImpact 计入单件罚金
func (e *CostEstimator) Estimate(g *GeometrySummary, req ManufacturingRequest, issues []Issue) (*CostEstimate, error) {
	quantity := req.ProductionVolume
	if quantity < 1 {
		quantity = 1
	}
	material := e.cfg.material(req.Material)
	process := e.cfg.process(req.Process)

	// 1. 材料费：体积 → 重量 → 费用
	volumeCM3 := g.VolumeMM3 / 1000
	weightKg := volumeCM3 * material.DensityGCM3 / 1000
	materialCost := weightKg * material.CostPerKg

	// 2. 开机费按数量摊销
	setupPerUnit := process.SetupCost / float64(quantity)

	// 3. 加工费：单件费 + 机时费
	machineHours := volumeCM3 / 100 * machineHoursPer100CM3
	processingCost := process.PerPartCost + machineHours*process.HourlyRate

	// 4. 问题罚金
	penalty := 0.0
	for _, issue := range issues {
		penalty += issue.CostImpact
	}

	unit := materialCost + setupPerUnit + processingCost + penalty
	if err := finite("unit_cost", unit); err != nil {
		return nil, err
	}

	// 5. 复杂度决定区间宽度
	c := complexity(g)
	return &CostEstimate{
		Min:            roundTo2Decimals(unit * (1 - 0.1*c)),
		Max:            roundTo2Decimals(unit * (1 + 0.2*c)),
		Currency:       e.cfg.Currency,
		MaterialCost:   roundTo2Decimals(materialCost),
		SetupCost:      roundTo2Decimals(process.SetupCost),
		ProcessingCost: roundTo2Decimals(processingCost),
		IssuePenalty:   roundTo2Decimals(penalty),
		UnitCost:       roundTo2Decimals(unit),
		TotalCost:      roundTo2Decimals(unit * float64(quantity)),
		Quantity:       quantity,
		Complexity:     roundTo2Decimals(c),
	}, nil
}

// complexity 0.4·面片因子 + 0.3·长宽比因子 + 0.3·表面积体积比因子，范围 [0,1]
func complexity(g *GeometrySummary) float64 {
	facet := unknownFacetFactor
	if g.FacetCount > 0 {
		facet = math.Min(float64(g.FacetCount)/facetSaturation, 1)
	}

	aspect := 0.0
	if g.BoundingBox.Complete() {
		dims := g.BoundingBox.Sorted()
		aspect = math.Min(dims[2]/dims[0]/10, 1)
	}

	area := g.SurfaceAreaMM2
	if area <= 0 {
		area = g.BoundingBox.SurfaceArea()
	}
	surface := math.Min(area/math.Max(g.VolumeMM3, 1)/100, 1)

	return math.Min(0.4*facet+0.3*aspect+0.3*surface, 1)
}

func finite(stage string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return &InternalScoringError{Stage: "cost", Err: fmt.Errorf("%s is invalid: %v", stage, v)}
	}
	return nil
}

// roundTo2Decimals 四舍五入到两位小数
func roundTo2Decimals(f float64) float64 {
	return math.Round(f*100) / 100
}

package dfm

import "fmt"

const (
	// DefaultQuoteVolumeMM3 未给出体积时的报价体积
	DefaultQuoteVolumeMM3 = 1000.0
	quoteSurfaceRatio     = 0.6
	quoteBoxEdgeMM        = 10.0
)

// Quote 不带几何的快速报价
type Quote struct {
	Process      ProcessKind  `json:"process"`
	Material     MaterialKind `json:"material"`
	VolumeMM3    float64      `json:"volume_mm3"`
	Quantity     int          `json:"quantity"`
	CostEstimate CostEstimate `json:"cost_estimate"`
	LeadTime     LeadTime     `json:"lead_time"`
}

// QuoteCost 按体积给出成本与交期，不做规则检测，问题罚金为 0
// 几何按 10mm 立方包围盒、表面积 0.6·体积 估算
func (e *Engine) QuoteCost(req ManufacturingRequest, volumeMM3 float64) (*Quote, error) {
	if volumeMM3 == 0 {
		volumeMM3 = DefaultQuoteVolumeMM3
	}
	if volumeMM3 < 0 {
		return nil, fmt.Errorf("%w: volume %v must be positive", ErrInvalidQuote, volumeMM3)
	}
	req = req.normalized()

	g := &GeometrySummary{
		VolumeMM3:      volumeMM3,
		SurfaceAreaMM2: volumeMM3 * quoteSurfaceRatio,
		BoundingBox:    BoundingBox{Length: quoteBoxEdgeMM, Width: quoteBoxEdgeMM, Height: quoteBoxEdgeMM},
	}
	cost, err := e.estimator.Estimate(g, req, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuote, err)
	}

	return &Quote{
		Process:      req.Process,
		Material:     req.Material,
		VolumeMM3:    volumeMM3,
		Quantity:     cost.Quantity,
		CostEstimate: *cost,
		LeadTime:     EstimateLeadTime(req.Process, req.ProductionVolume),
	}, nil
}

package dfm

import (
	"context"
	"errors"
	"fmt"
)

const (
	incompleteRule           = "Analysis Incomplete"
	incompleteRecommendation = "Retry the analysis or contact support if the problem persists"
)

// Engine 本地 DFM 分析引擎（纯计算，无 I/O，可并发使用）
type Engine struct {
	cfg         Config
	detector    *Detector
	estimator   *CostEstimator
	recommender *Recommender
}

// NewEngine 创建引擎，缺失配置项使用默认值
func NewEngine(cfg Config) *Engine {
	e := &Engine{cfg: cfg.withDefaults()}
	e.detector = NewDetector(&e.cfg)
	e.estimator = NewCostEstimator(&e.cfg)
	e.recommender = NewRecommender(&e.cfg)
	return e
}

// Currency 引擎使用的币种
func (e *Engine) Currency() string {
	return e.cfg.Currency
}

// Analyze 归一化并分析原始 CAD 数据
// 仅当数据无法归一化时返回错误；内部计算异常降级为 score 0 的结果
func (e *Engine) Analyze(ctx context.Context, raw any, req ManufacturingRequest) (*AnalysisResult, error) {
	g, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeGeometry(ctx, g, req), nil
}

// AnalyzeGeometry 分析已归一化的几何数据，总是返回结果
func (e *Engine) AnalyzeGeometry(ctx context.Context, g *GeometrySummary, req ManufacturingRequest) *AnalysisResult {
	req = req.normalized()
	result, err := e.evaluate(g, req)
	if err != nil {
		return e.degraded(req, err)
	}
	return result
}

func (e *Engine) evaluate(g *GeometrySummary, req ManufacturingRequest) (result *AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InternalScoringError{Stage: "evaluate", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	// 1. 规则检测
	issues := e.detector.Detect(g, req)

	// 2. 评分
	score, rating, err := Score(issues, req.Process, g)
	if err != nil {
		return nil, err
	}

	// 3. 成本
	cost, err := e.estimator.Estimate(g, req, issues)
	if err != nil {
		return nil, err
	}

	// 4. 建议与交期
	return &AnalysisResult{
		ManufacturabilityScore: score,
		OverallRating:          rating,
		PrimaryProcess:         req.Process,
		Material:               req.Material,
		Issues:                 issues,
		Recommendations:        e.recommender.Recommend(issues, score, req.Process),
		CostEstimate:           *cost,
		LeadTime:               EstimateLeadTime(req.Process, req.ProductionVolume),
		Source:                 SourceLocalFallback,
	}, nil
}

// degraded 内部异常时的降级结果
func (e *Engine) degraded(req ManufacturingRequest, cause error) *AnalysisResult {
	msg := "Analysis could not be completed"
	var scoringErr *InternalScoringError
	if errors.As(cause, &scoringErr) {
		msg = fmt.Sprintf("Analysis could not be completed (%s stage failed)", scoringErr.Stage)
	}
	return &AnalysisResult{
		ManufacturabilityScore: 0,
		OverallRating:          RatingLow,
		PrimaryProcess:         req.Process,
		Material:               req.Material,
		Issues: []Issue{{
			Rule:           incompleteRule,
			Severity:       SeverityCritical,
			Message:        msg,
			Recommendation: incompleteRecommendation,
		}},
		Recommendations: []string{incompleteRecommendation},
		CostEstimate:    CostEstimate{Currency: e.cfg.Currency, Quantity: req.ProductionVolume},
		LeadTime:        EstimateLeadTime(req.Process, req.ProductionVolume),
		Source:          SourceLocalFallback,
		Degraded:        true,
	}
}

package etanalysis

import (
	"encoding/json"
	"errors"
	"time"

	"mfgcopilot/internal/business/dfm"
)

// 错误定义
var (
	ErrInvalidAnalysisID = errors.New("analysis ID cannot be empty")
	ErrEmptyCADData      = errors.New("cad data cannot be empty")
	ErrNilResult         = errors.New("analysis result cannot be nil")
)

// Analysis 分析聚合根（领域对象）
type Analysis struct {
	ID           string
	RequestID    string
	Request      *Request
	Status       Status
	Source       dfm.Source
	Result       *dfm.AnalysisResult
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status 分析状态
type Status string

const (
	StatusPending Status = "PENDING"
	StatusDone    Status = "DONE"
	StatusFailed  Status = "FAILED"
)

// Request 分析参数（值对象）
type Request struct {
	CADData          json.RawMessage
	Material         string
	Process          string
	ProductionVolume int
	AdvancedAnalysis bool
}

// NewAnalysis 创建分析记录（工厂方法）
func NewAnalysis(id, requestID string, req *Request) (*Analysis, error) {
	if id == "" {
		return nil, ErrInvalidAnalysisID
	}
	if req == nil || len(req.CADData) == 0 {
		return nil, ErrEmptyCADData
	}
	if req.ProductionVolume <= 0 {
		req.ProductionVolume = 1
	}

	now := time.Now()
	return &Analysis{
		ID:        id,
		RequestID: requestID,
		Request:   req,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Complete 写入结果（领域行为）
func (a *Analysis) Complete(result *dfm.AnalysisResult) error {
	if result == nil {
		return ErrNilResult
	}
	a.Result = result
	a.Source = result.Source
	a.Status = StatusDone
	a.ErrorMessage = ""
	a.UpdatedAt = time.Now()
	return nil
}

// MarkAsFailed 标记为失败（领域行为）
func (a *Analysis) MarkAsFailed(msg string) {
	a.Status = StatusFailed
	a.ErrorMessage = msg
	a.UpdatedAt = time.Now()
}

// Finished 是否已出结果（成功或失败）
func (a *Analysis) Finished() bool {
	return a.Status == StatusDone || a.Status == StatusFailed
}

// ManufacturingRequest 转换为引擎输入
func (r *Request) ManufacturingRequest() dfm.ManufacturingRequest {
	return dfm.ManufacturingRequest{
		Material:         dfm.MaterialKind(r.Material),
		Process:          dfm.ProcessKind(r.Process),
		ProductionVolume: r.ProductionVolume,
		UseAdvancedDFM:   r.AdvancedAnalysis,
	}
}

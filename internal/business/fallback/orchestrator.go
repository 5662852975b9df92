package fallback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"mfgcopilot/internal/business/dfm"
	"mfgcopilot/pkg/logger"
)

const (
	DefaultHealthTimeout = 2 * time.Second
	DefaultCallTimeout   = 10 * time.Second
)

// RemoteAnalyzer 远端分析服务
type RemoteAnalyzer interface {
	CheckHealth(ctx context.Context) error
	Analyze(ctx context.Context, in *AnalyzeInput) (*dfm.AnalysisResult, error)
}

// AnalyzeInput 一次分析的输入；CADData 保持调用方原始形态
type AnalyzeInput struct {
	CADData any
	Request dfm.ManufacturingRequest
}

// Outcome 编排结果
type Outcome struct {
	Result    *dfm.AnalysisResult
	Source    dfm.Source
	Trace     []State
	RemoteErr error
	Elapsed   time.Duration
}

// Config 超时配置
type Config struct {
	HealthTimeout time.Duration
	CallTimeout   time.Duration
}

// Orchestrator 远端优先、本地兜底的分析编排器
type Orchestrator struct {
	engine *dfm.Engine
	remote RemoteAnalyzer
	cfg    Config
	logger logger.Logger
}

// NewOrchestrator 创建编排器；remote 为 nil 时始终走本地引擎
func NewOrchestrator(engine *dfm.Engine, remote RemoteAnalyzer, cfg Config, log logger.Logger) *Orchestrator {
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = DefaultHealthTimeout
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Orchestrator{engine: engine, remote: remote, cfg: cfg, logger: log}
}

// Run 执行一次分析
// 只有 CAD 数据无法归一化时返回错误，此时不会访问远端；远端的任何失败都被吸收并降级为本地结果
func (o *Orchestrator) Run(ctx context.Context, in *AnalyzeInput) (*Outcome, error) {
	start := time.Now()

	geometry, err := dfm.Normalize(in.CADData)
	if err != nil {
		return nil, err
	}

	m := newMachine()
	out := &Outcome{}
	for m.current != StateDone {
		switch m.current {
		case StateIdle:
			m.to(StateCheckingRemote)

		case StateCheckingRemote:
			if err := o.checkRemote(ctx); err != nil {
				out.RemoteErr = err
				m.to(StateRemoteUnavailable)
			} else {
				m.to(StateRemoteOK)
			}

		case StateRemoteOK:
			m.to(StateCallingRemote)

		case StateCallingRemote:
			result, err := o.callRemote(ctx, in)
			if err != nil {
				out.RemoteErr = err
				m.to(StateRemoteFailed)
			} else {
				out.Result = result
				m.to(StateRemoteResult)
			}

		case StateRemoteResult:
			out.Source = dfm.SourceCloud
			m.to(StateDone)

		case StateRemoteUnavailable, StateRemoteFailed:
			o.logRemoteError(ctx, out.RemoteErr)
			m.to(StateLocalFallback)

		case StateLocalFallback:
			result := o.engine.AnalyzeGeometry(ctx, geometry, in.Request)
			result.Source = dfm.SourceLocalFallback
			if result.Degraded {
				o.logger.Errorf(ctx, "[Fallback] local analysis degraded: %s", result.Issues[0].Message)
			}
			out.Result = result
			out.Source = dfm.SourceLocalFallback
			m.to(StateDone)
		}
		o.logger.Debugf(ctx, "[Fallback] state -> %s", m.current)
	}

	out.Trace = m.trace
	out.Elapsed = time.Since(start)
	o.logger.Infof(ctx, "[Fallback] analysis done: source=%s score=%d elapsed=%s",
		out.Source, out.Result.ManufacturabilityScore, out.Elapsed)
	return out, nil
}

// QuoteCost 快速报价只走本地引擎，不依赖远端
func (o *Orchestrator) QuoteCost(req dfm.ManufacturingRequest, volumeMM3 float64) (*dfm.Quote, error) {
	return o.engine.QuoteCost(req, volumeMM3)
}

func (o *Orchestrator) checkRemote(ctx context.Context) error {
	if o.remote == nil {
		return &RemoteUnavailableError{Op: "health", Err: errors.New("remote endpoint not configured")}
	}
	hctx, cancel := context.WithTimeout(ctx, o.cfg.HealthTimeout)
	defer cancel()
	if err := o.remote.CheckHealth(hctx); err != nil {
		return classify("health", o.cfg.HealthTimeout, err)
	}
	return nil
}

func (o *Orchestrator) callRemote(ctx context.Context, in *AnalyzeInput) (*dfm.AnalysisResult, error) {
	cctx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()
	result, err := o.remote.Analyze(cctx, in)
	if err != nil {
		return nil, classify("analyze", o.cfg.CallTimeout, err)
	}
	if err := validateResult(result); err != nil {
		return nil, &RemoteUnavailableError{Op: "analyze", Err: err}
	}
	if result.Issues == nil {
		result.Issues = []dfm.Issue{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	result.Source = dfm.SourceCloud
	return result, nil
}

func (o *Orchestrator) logRemoteError(ctx context.Context, err error) {
	var timeout *RemoteTimeoutError
	switch {
	case o.remote == nil:
		o.logger.Debugf(ctx, "[Fallback] remote disabled, using local engine")
	case errors.As(err, &timeout):
		o.logger.Warnf(ctx, "[Fallback] remote %s exceeded %s, using local engine", timeout.Op, timeout.Timeout)
	default:
		o.logger.Warnf(ctx, "[Fallback] %v, using local engine", err)
	}
}

// validateResult 远端结果的结构校验
func validateResult(r *dfm.AnalysisResult) error {
	if r == nil {
		return fmt.Errorf("%w: empty result", ErrInvalidRemoteResponse)
	}
	if r.ManufacturabilityScore < 0 || r.ManufacturabilityScore > 100 {
		return fmt.Errorf("%w: score %d out of range", ErrInvalidRemoteResponse, r.ManufacturabilityScore)
	}
	if !r.OverallRating.Valid() {
		return fmt.Errorf("%w: unknown rating %q", ErrInvalidRemoteResponse, r.OverallRating)
	}
	if c := r.CostEstimate; c.Min < 0 || c.Max < c.Min {
		return fmt.Errorf("%w: cost range [%v, %v]", ErrInvalidRemoteResponse, c.Min, c.Max)
	}
	if lt := r.LeadTime; lt.Min < 0 || lt.Max < lt.Min {
		return fmt.Errorf("%w: lead time range [%d, %d]", ErrInvalidRemoteResponse, lt.Min, lt.Max)
	}
	return nil
}

// classify 超时归为 RemoteTimeoutError，其余归为 RemoteUnavailableError
func classify(op string, timeout time.Duration, err error) error {
	var timeoutErr *RemoteTimeoutError
	if errors.As(err, &timeoutErr) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &RemoteTimeoutError{Op: op, Timeout: timeout, Err: err}
	}
	var unavailable *RemoteUnavailableError
	if errors.As(err, &unavailable) {
		return err
	}
	return &RemoteUnavailableError{Op: op, Err: err}
}

package svanalysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mfgcopilot/internal/app/domains/entity/etanalysis"
	"mfgcopilot/internal/app/domains/modules/mdjob"
	"mfgcopilot/internal/app/domains/repo/rpanalysis"
	"mfgcopilot/internal/app/pkg/errorx"
	"mfgcopilot/internal/business/dfm"
	"mfgcopilot/internal/business/fallback"
	"mfgcopilot/pkg/logger"
)

// AnalysisStore 分析记录存取（由 mdanalysis.AnalysisModule 实现）
type AnalysisStore interface {
	Create(ctx context.Context, analysis *etanalysis.Analysis) error
	MarkFailed(ctx context.Context, analysis *etanalysis.Analysis, msg string) error
	GetByID(ctx context.Context, analysisID string) (*etanalysis.Analysis, error)
}

// JobDispatcher 任务投递与结果等待（由 mdjob.JobModule 实现）
type JobDispatcher interface {
	Dispatch(ctx context.Context, analysis *etanalysis.Analysis) error
	Watch(ctx context.Context, analysisID string) (mdjob.ResultWatch, error)
}

// Analyzer 同步分析与快速报价（由 fallback.Orchestrator 实现）
type Analyzer interface {
	Run(ctx context.Context, in *fallback.AnalyzeInput) (*fallback.Outcome, error)
	QuoteCost(req dfm.ManufacturingRequest, volumeMM3 float64) (*dfm.Quote, error)
}

// AnalysisService 分析服务，负责分析业务编排
type AnalysisService struct {
	store      AnalysisStore
	dispatcher JobDispatcher
	analyzer   Analyzer
	maxWait    time.Duration
	logger     logger.Logger
}

// NewAnalysisService 创建分析服务实例
func NewAnalysisService(store AnalysisStore, dispatcher JobDispatcher, analyzer Analyzer, maxWaitSeconds int, log logger.Logger) *AnalysisService {
	return &AnalysisService{
		store:      store,
		dispatcher: dispatcher,
		analyzer:   analyzer,
		maxWait:    time.Duration(maxWaitSeconds) * time.Second,
		logger:     log,
	}
}

// Analyze 同步分析：远端优先，失败时本地兜底；只有输入无法解析才返回错误
func (s *AnalysisService) Analyze(ctx context.Context, req *etanalysis.Request) (*dfm.AnalysisResult, error) {
	outcome, err := s.analyzer.Run(ctx, &fallback.AnalyzeInput{
		CADData: req.CADData,
		Request: req.ManufacturingRequest(),
	})
	if err != nil {
		return nil, malformed(err)
	}
	return outcome.Result, nil
}

// Quote 按工艺、材料、体积估算成本，不需要 CAD 数据
func (s *AnalysisService) Quote(ctx context.Context, process, material string, volumeMM3 float64, quantity int) (*dfm.Quote, error) {
	quote, err := s.analyzer.QuoteCost(dfm.ManufacturingRequest{
		Material:         dfm.MaterialKind(material),
		Process:          dfm.ProcessKind(process),
		ProductionVolume: quantity,
	}, volumeMM3)
	if err != nil {
		return nil, malformed(err)
	}
	s.logger.Debugf(ctx, "[AnalysisService] quote process=%s material=%s volume=%v unit_cost=%v",
		quote.Process, quote.Material, quote.VolumeMM3, quote.CostEstimate.UnitCost)
	return quote, nil
}

// Submit 异步分析（完整业务流程）
// 1. 校验 CAD 数据可解析
// 2. 创建分析记录并落库
// 3. 订阅结果频道（wait > 0）
// 4. 发布到分析队列，失败则记录置为 FAILED
// 5. Smart Wait，超时返回 PENDING 记录
func (s *AnalysisService) Submit(ctx context.Context, requestID string, req *etanalysis.Request, waitSeconds int) (*etanalysis.Analysis, error) {
	if _, err := dfm.Normalize(req.CADData); err != nil {
		return nil, malformed(err)
	}

	analysis, err := etanalysis.NewAnalysis(uuid.New().String(), requestID, req)
	if err != nil {
		return nil, malformed(err)
	}

	if err := s.store.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("save analysis failed: %w", err)
	}

	var watch mdjob.ResultWatch
	if wait := s.waitDuration(waitSeconds); wait > 0 {
		watch, err = s.dispatcher.Watch(ctx, analysis.ID)
		if err != nil {
			s.logger.Warnf(ctx, "[AnalysisService] subscribe result failed, analysis_id=%s: %v", analysis.ID, err)
		}
	}
	if watch != nil {
		defer watch.Close()
	}

	if err := s.dispatcher.Dispatch(ctx, analysis); err != nil {
		s.abandon(ctx, analysis, err)
		return nil, fmt.Errorf("dispatch analysis failed: %w", err)
	}

	if watch == nil {
		return analysis, nil
	}

	notification, err := watch.Wait(ctx, s.waitDuration(waitSeconds))
	if err != nil {
		s.logger.Infof(ctx, "[AnalysisService] smart wait ended without result, analysis_id=%s: %v", analysis.ID, err)
		return analysis, nil
	}
	s.logger.Debugf(ctx, "[AnalysisService] analysis finished, analysis_id=%s status=%s source=%s",
		analysis.ID, notification.Status, notification.Source)

	return s.Get(ctx, analysis.ID)
}

// abandon 未投递成功的记录置为 FAILED，避免轮询方一直看到 PENDING
func (s *AnalysisService) abandon(ctx context.Context, analysis *etanalysis.Analysis, cause error) {
	msg := fmt.Sprintf("dispatch failed: %v", cause)
	if err := s.store.MarkFailed(context.WithoutCancel(ctx), analysis, msg); err != nil {
		s.logger.Errorf(ctx, "[AnalysisService] mark undispatched analysis failed, analysis_id=%s: %v", analysis.ID, err)
	}
}

// Get 查询分析记录
func (s *AnalysisService) Get(ctx context.Context, analysisID string) (*etanalysis.Analysis, error) {
	analysis, err := s.store.GetByID(ctx, analysisID)
	if errors.Is(err, rpanalysis.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", errorx.ErrAnalysisNotFound, analysisID)
	}
	return analysis, err
}

// waitDuration 等待时长不超过服务端上限
func (s *AnalysisService) waitDuration(waitSeconds int) time.Duration {
	if waitSeconds <= 0 {
		return 0
	}
	wait := time.Duration(waitSeconds) * time.Second
	if s.maxWait > 0 && wait > s.maxWait {
		return s.maxWait
	}
	return wait
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", errorx.ErrMalformedInput, err)
}

package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"mfgcopilot/internal/bootstrap"
	"mfgcopilot/internal/business/analysis"
	"mfgcopilot/internal/domains"
	"mfgcopilot/internal/framework"
	"mfgcopilot/pkg/config"
	"mfgcopilot/pkg/infra/mysql"
	"mfgcopilot/pkg/infra/redis"
	"mfgcopilot/pkg/lmstfy"
	"mfgcopilot/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx          context.Context
	cfg          *config.Config
	lmstfyClient *lmstfy.Client
	dao          *mysql.AnalysisDAO
	pubsub       *redis.PubSub
	deps         *domains.Dependencies
	workers      []Worker
	closing      *atomic.Bool
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
	logger       logger.Logger
}

// NewManagerInstance 创建 Manager
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	// 初始化 lmstfy 客户端
	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy)
	if err != nil {
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	dao, err := mysql.NewAnalysisDAO(cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis dao: %w", err)
	}

	pubsub, err := redis.NewPubSub(cfg.Redis)
	if err != nil {
		dao.Close()
		return nil, fmt.Errorf("failed to create redis pubsub: %w", err)
	}

	deps := &domains.Dependencies{
		Analyzer: bootstrap.NewOrchestrator(cfg.Engine, cfg.Remote, log),
		Reporter: analysis.NewReporter(dao, pubsub, log),
		Logger:   log,
	}

	log.Infof(ctx, "[Manager] Initialized, remote endpoint: %q", cfg.Remote.Endpoint)

	return &ManagerInstance{
		ctx:          ctx,
		cfg:          cfg,
		lmstfyClient: lmstfyClient,
		dao:          dao,
		pubsub:       pubsub,
		deps:         deps,
		closing:      atomic.NewBool(false),
		shutdownCh:   make(chan struct{}),
		workers:      make([]Worker, 0),
		logger:       log,
	}, nil
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	// 2. 启动所有 Worker（每个 Worker 在独立 goroutine）
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	// 3. 阻塞等待退出信号
	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	if m.closing.CAS(false, true) {
		// 1. 所有 Worker 安全退出
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		// 2. 等待所有 Worker 退出
		m.wg.Wait()
		var total framework.Stats
		for _, worker := range m.workers {
			s := worker.Stats()
			total.Succeeded += s.Succeeded
			total.Released += s.Released
			total.Buried += s.Buried
		}
		m.logger.Infof(m.ctx, "[Manager] Jobs handled: succeeded=%d released=%d buried=%d",
			total.Succeeded, total.Released, total.Buried)

		// 3. 释放存储连接
		if err := m.pubsub.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] close redis failed: %v", err)
		}
		if err := m.dao.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] close mysql failed: %v", err)
		}

		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 加载所有 Worker
func (m *ManagerInstance) loadWorkers() error {
	for _, workerCfg := range m.cfg.Workers {
		subCfg := &framework.SubscriberConfig{
			QueueName:    workerCfg.QueueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}

		procCfg := &framework.ProcessorConfig{
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg.Name,
			subCfg,
			procCfg,
			m.lmstfyClient, // MessageSource
			domains.GetProcess(m.deps),
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)
	}

	return nil
}

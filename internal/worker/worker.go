package worker

import (
	"context"

	"mfgcopilot/internal/framework"
	"mfgcopilot/pkg/lmstfyx"
	"mfgcopilot/pkg/logger"
)

// Worker 单个分析队列的消费单元
type Worker interface {
	Start()
	Shutdown()
	GetName() string
	Stats() framework.Stats
}

// WorkerInstance Subscriber 拉取 → inputChan → Processor 分析并 ACK
type WorkerInstance struct {
	ctx        context.Context
	name       string
	queue      string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	inputChan  chan *framework.Message
	done       chan struct{}
	logger     logger.Logger
}

// NewWorkerInstance 创建 Worker 实例
func NewWorkerInstance(
	ctx context.Context,
	name string,
	subscriberCfg *framework.SubscriberConfig,
	processorCfg *framework.ProcessorConfig,
	source framework.MessageSource,
	proc lmstfyx.Proc,
	log logger.Logger,
) (Worker, error) {
	if err := framework.CheckTTR(subscriberCfg, processorCfg); err != nil {
		return nil, err
	}
	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		queue:      subscriberCfg.QueueName,
		subscriber: framework.NewSubscriber(subscriberCfg, source, log),
		processor:  framework.NewProcessor(processorCfg, proc, source, log),
		inputChan:  make(chan *framework.Message, processorCfg.BufferSize),
		done:       make(chan struct{}),
		logger:     log,
	}, nil
}

// Start 先起 Processor 再起 Subscriber，阻塞到 Shutdown 完成
func (w *WorkerInstance) Start() {
	if err := w.processor.Start(w.ctx, w.inputChan); err != nil {
		w.logger.Errorf(w.ctx, "[Worker] %s processor start failed: %v", w.name, err)
	}
	if err := w.subscriber.Start(w.ctx, w.inputChan); err != nil {
		w.logger.Errorf(w.ctx, "[Worker] %s subscriber start failed: %v", w.name, err)
	}
	w.logger.Infof(w.ctx, "[Worker] %s consuming queue %s", w.name, w.queue)

	<-w.done
}

// Shutdown 停拉取并等待拉取协程退出后，再让 Processor 排空已拉取的任务
// 已拉取但未交付的任务不 ACK，由 TTR 重新投递
func (w *WorkerInstance) Shutdown() {
	w.subscriber.Stop()
	w.subscriber.Wait()

	w.processor.SignalShutdown()
	w.processor.Wait()

	s := w.processor.Stats()
	w.logger.Infof(w.ctx, "[Worker] %s stopped: succeeded=%d released=%d buried=%d",
		w.name, s.Succeeded, s.Released, s.Buried)
	close(w.done)
}

// GetName 获取 Worker 名称
func (w *WorkerInstance) GetName() string {
	return w.name
}

// Stats 处理计数
func (w *WorkerInstance) Stats() framework.Stats {
	return w.processor.Stats()
}

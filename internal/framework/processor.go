package framework

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitleak/lmstfy/client"
	"go.uber.org/atomic"

	"mfgcopilot/pkg/lmstfyx"
	"mfgcopilot/pkg/logger"
)

// Stats 任务处理计数
type Stats struct {
	Succeeded int64
	Released  int64
	Buried    int64
	AckFailed int64
}

// Processor 从 inputChan 取任务，执行注入的 Proc，并按 JobResp.Action 决定是否 ACK
type Processor struct {
	cfg    ProcessorConfig
	proc   lmstfyx.Proc
	source MessageSource
	logger logger.Logger

	stopping chan struct{}
	wg       sync.WaitGroup

	succeeded atomic.Int64
	released  atomic.Int64
	buried    atomic.Int64
	ackFailed atomic.Int64
}

// NewProcessor 创建处理器
func NewProcessor(cfg *ProcessorConfig, proc lmstfyx.Proc, source MessageSource, log logger.Logger) *Processor {
	return &Processor{
		cfg:      cfg.withDefaults(),
		proc:     proc,
		source:   source,
		logger:   log,
		stopping: make(chan struct{}),
	}
}

// Start 启动 cfg.Concurrency 个处理协程
func (p *Processor) Start(ctx context.Context, inputChan <-chan *Message) error {
	p.logger.Infof(ctx, "[Processor] Starting %d analysis workers (timeout=%s)", p.cfg.Concurrency, p.cfg.Timeout)
	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.loop(ctx, i, inputChan)
	}
	return nil
}

// SignalShutdown 进入排空模式：处理完 inputChan 中已拉取的任务后退出
// 调用前须确认 Subscriber 已停止写入
func (p *Processor) SignalShutdown() {
	close(p.stopping)
}

// Wait 等待处理协程全部退出
func (p *Processor) Wait() {
	p.wg.Wait()
	s := p.Stats()
	p.logger.Infof(context.Background(), "[Processor] Exited, succeeded=%d released=%d buried=%d ack_failed=%d",
		s.Succeeded, s.Released, s.Buried, s.AckFailed)
}

// Stats 当前计数快照
func (p *Processor) Stats() Stats {
	return Stats{
		Succeeded: p.succeeded.Load(),
		Released:  p.released.Load(),
		Buried:    p.buried.Load(),
		AckFailed: p.ackFailed.Load(),
	}
}

func (p *Processor) loop(ctx context.Context, workerID int, inputChan <-chan *Message) {
	defer p.wg.Done()

	for {
		select {
		case msg, ok := <-inputChan:
			if !ok {
				return
			}
			p.process(ctx, msg, workerID)
		case <-p.stopping:
			n := p.drain(ctx, workerID, inputChan)
			p.logger.Infof(ctx, "[Processor-%d] Drained %d jobs", workerID, n)
			return
		}
	}
}

func (p *Processor) drain(ctx context.Context, workerID int, inputChan <-chan *Message) int {
	n := 0
	for {
		select {
		case msg, ok := <-inputChan:
			if !ok {
				return n
			}
			p.process(ctx, msg, workerID)
			n++
		default:
			return n
		}
	}
}

// process 单个任务在独立超时内执行；父 ctx 取消不会打断进行中的分析
func (p *Processor) process(ctx context.Context, msg *Message, workerID int) {
	if msg == nil {
		return
	}
	start := time.Now()

	procCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.Timeout)
	defer cancel()
	procCtx = logger.WithWorkerID(procCtx, workerID)

	resp := p.invoke(procCtx, &client.Job{ID: msg.ID, Queue: msg.Queue, Data: msg.Data})

	p.logger.Infof(procCtx, "[Processor-%d] Job %s -> %s in %v", workerID, msg.ID, resp.Action, time.Since(start))
	p.settle(procCtx, msg, resp)
}

// invoke Proc 不返回结果时按 Release 处理；panic 按 Bury 处理，避免毒消息反复投递
func (p *Processor) invoke(ctx context.Context, job *client.Job) (resp *lmstfyx.JobResp) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorf(ctx, "[Processor] proc panic on job %s: %v", job.ID, r)
			resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury, Data: []byte(fmt.Sprint(r))}
		}
	}()

	resp = p.proc(ctx, job)
	if resp == nil {
		resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease}
	}
	return resp
}

// settle Success 与 Bury 都 ACK；Release 不 ACK，TTR 到期后队列重新投递
func (p *Processor) settle(ctx context.Context, msg *Message, resp *lmstfyx.JobResp) {
	switch resp.Action {
	case lmstfyx.JobRespStatusRelease:
		p.released.Inc()
		p.logger.Warnf(ctx, "[Processor] Job %s released, redelivery after ttr", msg.ID)
		return
	case lmstfyx.JobRespStatusBury:
		p.buried.Inc()
		p.logger.Errorf(ctx, "[Processor] Job %s dropped: %s", msg.ID, string(resp.Data))
	default:
		p.succeeded.Inc()
	}

	if err := p.source.Ack(msg.Queue, msg.ID); err != nil {
		p.ackFailed.Inc()
		p.logger.Errorf(ctx, "[Processor] Ack job %s failed: %v", msg.ID, err)
	}
}

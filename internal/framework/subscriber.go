package framework

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"mfgcopilot/pkg/logger"
)

// Subscriber 从分析队列拉取任务交给 Processor
// 拉取到但未能交付的任务不会 ACK，TTR 到期后由队列重新投递
type Subscriber struct {
	cfg     SubscriberConfig
	source  MessageSource
	logger  logger.Logger
	limiter *rate.Limiter // 所有拉取协程共享
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewSubscriber 创建订阅者
func NewSubscriber(cfg *SubscriberConfig, source MessageSource, log logger.Logger) *Subscriber {
	c := cfg.withDefaults()
	limit := rate.Inf
	if c.Rate > 0 {
		limit = rate.Every(c.Rate)
	}
	return &Subscriber{
		cfg:     c,
		source:  source,
		logger:  log,
		limiter: rate.NewLimiter(limit, c.Concurrency),
	}
}

// Start 启动拉取协程，parentCtx 取消或 Stop 时退出
func (s *Subscriber) Start(parentCtx context.Context, inputChan chan<- *Message) error {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel

	s.logger.Infof(ctx, "[Subscriber] Starting %d pullers on queue %s (ttr=%s)",
		s.cfg.Concurrency, s.cfg.QueueName, s.cfg.TTR)

	for i := 0; i < s.cfg.Concurrency; i++ {
		s.wg.Add(1)
		go s.loop(ctx, i, inputChan)
	}
	return nil
}

// Stop 停止拉取新任务
func (s *Subscriber) Stop() {
	s.logger.Infof(context.Background(), "[Subscriber] Stopping pulls on %s", s.cfg.QueueName)
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait 等待拉取协程全部退出
func (s *Subscriber) Wait() {
	s.wg.Wait()
	s.logger.Infof(context.Background(), "[Subscriber] All pullers exited")
}

func (s *Subscriber) loop(ctx context.Context, pullerID int, inputChan chan<- *Message) {
	defer s.wg.Done()

	backoff := s.cfg.ErrorBackoff
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		msg, err := s.source.Consume(s.cfg.QueueName, s.cfg.Timeout, s.cfg.TTR)
		if err != nil {
			s.logger.Warnf(ctx, "[Subscriber-%d] Consume error: %v, backing off %s", pullerID, err, backoff)
			if !sleepCtx(ctx, backoff) {
				return
			}
			if backoff < s.cfg.ErrorBackoff*maxBackoffFactor {
				backoff *= 2
			}
			continue
		}
		backoff = s.cfg.ErrorBackoff

		if msg == nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		select {
		case inputChan <- msg:
			s.logger.Debugf(ctx, "[Subscriber-%d] Job handed over: %s", pullerID, msg.ID)
		case <-ctx.Done():
			s.logger.Warnf(ctx, "[Subscriber-%d] Shutting down, job %s left for redelivery after ttr", pullerID, msg.ID)
			return
		}
	}
}

// sleepCtx 可被 ctx 打断的 sleep，返回 false 表示 ctx 已取消
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

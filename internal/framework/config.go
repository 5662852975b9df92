package framework

import (
	"fmt"
	"time"
)

// 默认值
const (
	defaultPullTimeout  = 3 * time.Second
	defaultErrorBackoff = time.Second
	maxBackoffFactor    = 8
	defaultProcTimeout  = 45 * time.Second
)

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	QueueName    string        // 分析任务队列
	Concurrency  int           // 并发拉取协程数
	Timeout      time.Duration // 单次拉取的阻塞时长
	TTR          time.Duration // 未 ACK 的任务在 TTR 后重新投递
	Rate         time.Duration // 两次拉取的最小间隔，0 不限速
	ErrorBackoff time.Duration // 拉取失败的初始退避，连续失败翻倍
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Concurrency int           // 并发分析协程数
	BufferSize  int           // inputChan 缓冲区大小
	Timeout     time.Duration // 单个任务的分析超时（远端探测 + 调用 + 写库）
}

func (c *SubscriberConfig) withDefaults() SubscriberConfig {
	out := *c
	if out.Concurrency < 1 {
		out.Concurrency = 1
	}
	if out.Timeout <= 0 {
		out.Timeout = defaultPullTimeout
	}
	if out.ErrorBackoff <= 0 {
		out.ErrorBackoff = defaultErrorBackoff
	}
	return out
}

func (c *ProcessorConfig) withDefaults() ProcessorConfig {
	out := *c
	if out.Concurrency < 1 {
		out.Concurrency = 1
	}
	if out.Timeout <= 0 {
		out.Timeout = defaultProcTimeout
	}
	return out
}

// CheckTTR 任务超时必须小于 TTR，否则分析尚未结束任务就会被重新投递
func CheckTTR(sub *SubscriberConfig, proc *ProcessorConfig) error {
	if sub.TTR <= 0 {
		return nil
	}
	p := proc.withDefaults()
	if p.Timeout >= sub.TTR {
		return fmt.Errorf("queue %s: processor timeout %s must be shorter than ttr %s", sub.QueueName, p.Timeout, sub.TTR)
	}
	return nil
}

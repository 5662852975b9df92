package framework

import (
	"context"
	"time"
)

// Message 队列中的一条分析任务
type Message struct {
	ID    string // lmstfy job id，用于 ACK
	Queue string
	Data  []byte // 任务信封 {payload:{data:{...}}}
}

// MessageSource 任务来源
// Consume 在 timeout 内没有任务时返回 (nil, nil)；ttr 内未 ACK 的任务会被重新投递
type MessageSource interface {
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)
	Ack(queue string, jobID string) error
}

// ProcessorFunc 处理链中的单个阶段
type ProcessorFunc func(ctx context.Context) error

// BusinessHandler 按 action_type 路由到的任务处理器，返回写入 JobResp 的响应体
type BusinessHandler interface {
	Handle(ctx context.Context) ([]byte, error)
}

// Resulter 把业务结果整理成任务响应
type Resulter interface {
	Set(ctx context.Context, data interface{}) error
	Get(ctx context.Context) interface{}
}

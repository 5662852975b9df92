package mdjob

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mfgcopilot/common/model"
	"mfgcopilot/internal/app/domains/apimodel/request"
	"mfgcopilot/internal/app/domains/entity/etanalysis"
	"mfgcopilot/internal/app/infra/persistence/redis"
)

// Publisher 队列发布（由 pkg/lmstfy.Client 实现）
type Publisher interface {
	PublishJSON(queue string, payload interface{}) (string, error)
}

// JobModule 分析任务模块
// 职责：
// 1. 构造任务消息并投递到 lmstfy
// 2. 约定结果频道（{prefix}{analysis_id}）并等待 worker 通知
type JobModule struct {
	publisher     Publisher
	redisClient   *redis.PubSubClient
	queueName     string
	channelPrefix string
}

// NewJobModule 创建分析任务模块实例
func NewJobModule(publisher Publisher, redisClient *redis.PubSubClient, queueName, channelPrefix string) *JobModule {
	return &JobModule{
		publisher:     publisher,
		redisClient:   redisClient,
		queueName:     queueName,
		channelPrefix: channelPrefix,
	}
}

// Dispatch 发布分析任务，worker 直接使用消息中的数据，无需回查 DB
func (m *JobModule) Dispatch(ctx context.Context, analysis *etanalysis.Analysis) error {
	job := model.NewAnalysisJob(analysis.RequestID, analysis.ID, request.ToJobData(analysis.Request))
	if _, err := m.publisher.PublishJSON(m.queueName, job); err != nil {
		return fmt.Errorf("publish analysis job failed: %w", err)
	}
	return nil
}

// Watch 订阅结果频道；须在 Dispatch 之前调用
func (m *JobModule) Watch(ctx context.Context, analysisID string) (ResultWatch, error) {
	sub, err := m.redisClient.Subscribe(ctx, model.ResultChannel(m.channelPrefix, analysisID))
	if err != nil {
		return nil, err
	}
	return &watch{sub: sub}, nil
}

// ResultWatch 结果等待句柄
type ResultWatch interface {
	Wait(ctx context.Context, timeout time.Duration) (*model.AnalysisNotification, error)
	Close() error
}

type watch struct {
	sub *redis.Subscription
}

func (w *watch) Wait(ctx context.Context, timeout time.Duration) (*model.AnalysisNotification, error) {
	payload, err := w.sub.Wait(ctx, timeout)
	if err != nil {
		return nil, err
	}

	var n model.AnalysisNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return nil, fmt.Errorf("decode notification failed: %w", err)
	}
	return &n, nil
}

func (w *watch) Close() error {
	return w.sub.Close()
}

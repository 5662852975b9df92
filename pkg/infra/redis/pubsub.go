package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mfgcopilot/common/model"
	"mfgcopilot/pkg/config"
)

// PubSub Redis 发布客户端（worker 侧）
type PubSub struct {
	client *redis.Client
	prefix string
}

// NewPubSub 创建 PubSub 实例
func NewPubSub(cfg config.RedisConfig) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PubSub{client: client, prefix: cfg.ChannelPrefix}, nil
}

// PublishAnalysisComplete 发布分析完成通知到 {prefix}{analysis_id}
func (p *PubSub) PublishAnalysisComplete(ctx context.Context, notification *model.AnalysisNotification) error {
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := model.ResultChannel(p.prefix, notification.AnalysisID)
	if err := p.client.Publish(ctx, channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Close 关闭 Redis 连接
func (p *PubSub) Close() error {
	return p.client.Close()
}

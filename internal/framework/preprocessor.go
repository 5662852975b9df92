package framework

import (
	"context"
	"fmt"

	"mfgcopilot/pkg/errorutil"
)

// Stage 处理链中的一个命名阶段
type Stage struct {
	Name string
	Fn   ProcessorFunc
}

// PreProcessor 按顺序执行 PreProcess → Process → PostProcess
type PreProcessor struct {
	stages []Stage
}

// NewPreProcessor 创建处理链
func NewPreProcessor(stages ...Stage) *PreProcessor {
	return &PreProcessor{stages: stages}
}

// Run 任一阶段失败立即停止，错误带上阶段名并保留可重试标记
// 阶段之间检查 ctx：任务超时视为可重试，交给 TTR 重新投递
func (p *PreProcessor) Run(ctx context.Context) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return errorutil.Retriable(fmt.Sprintf("stage %s not started", stage.Name), err)
		}
		if err := stage.Fn(ctx); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
	}
	return nil
}

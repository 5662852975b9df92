package domains

import (
	"context"
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"

	"mfgcopilot/internal/framework"
	"mfgcopilot/pkg/errorutil"
	"mfgcopilot/pkg/lmstfyx"
	"mfgcopilot/pkg/logger"
)

// GetProcess 返回核心处理函数（注入到 Processor）
func GetProcess(deps *Dependencies) lmstfyx.Proc {
	log := deps.Logger
	return func(ctx context.Context, lmstfyJob *client.Job) *lmstfyx.JobResp {
		startTime := time.Now()

		// 1. 解析 Job
		base := &framework.BaseHandler{}
		if err := base.ParseJob(ctx, lmstfyJob.Data); err != nil {
			log.Errorf(ctx, "[GetProcess] parseJob failed: job_id=%s, %v", lmstfyJob.ID, err)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}
		meta := base.GetMeta()

		// 2. 注入链路信息到 Context
		ctx = logger.WithTraceID(ctx, meta.RequestID)
		ctx = logger.WithActionType(ctx, meta.ActionType)
		ctx = logger.WithAnalysisID(ctx, meta.ID)

		log.Infof(ctx, "[GetProcess] Processing job: action_type=%s, request_id=%s, id=%s",
			meta.ActionType, meta.RequestID, meta.ID)

		// 3. 从 HandlerMap 获取 Handler
		handlerFunc, ok := HandlerMap[meta.ActionType]
		if !ok {
			log.Errorf(ctx, "[GetProcess] handler not found for action_type: %s", meta.ActionType)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}

		// 4. 调用 Handler（捕获 panic）
		resp := runHandler(ctx, handlerFunc, base, deps)

		// 5. 记录处理时长
		log.Infof(ctx, "[GetProcess] Processing complete: action=%s, duration=%v", resp.Action, time.Since(startTime))

		return resp
	}
}

func runHandler(ctx context.Context, handlerFunc HandlerFactory, base *framework.BaseHandler, deps *Dependencies) (resp *lmstfyx.JobResp) {
	defer func() {
		if r := recover(); r != nil {
			deps.Logger.Errorf(ctx, "[GetProcess] handler panic: %v", r)
			resp = doJobReport(ctx, nil, errorutil.NonRetriable("handler panic", fmt.Errorf("%v", r)), deps.Logger)
		}
	}()

	handler, err := handlerFunc(ctx, base, deps)
	if err != nil {
		deps.Logger.Errorf(ctx, "[GetProcess] handler creation failed: %v", err)
		return doJobReport(ctx, nil, err, deps.Logger)
	}

	data, err := handler.Handle(ctx)
	return doJobReport(ctx, data, err, deps.Logger)
}

// doJobReport 生成 JobResp：成功 ACK，可重试 Release，其余 Bury
func doJobReport(ctx context.Context, data []byte, err error, log logger.Logger) *lmstfyx.JobResp {
	switch {
	case err == nil:
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess, Data: data}
	case errorutil.IsRetryable(err):
		log.Warnf(ctx, "[doJobReport] retryable failure: %v", err)
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease, Data: data}
	default:
		log.Errorf(ctx, "[doJobReport] permanent failure: %v", err)
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury, Data: data}
	}
}

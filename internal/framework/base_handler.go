package framework

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"mfgcopilot/pkg/errorutil"
)

// BaseHandler 任务处理器的公共部分：解析任务信封、解码业务数据、包装响应
// 具体处理器嵌入它并实现 BusinessHandler
type BaseHandler struct {
	meta     *JobMeta
	payload  json.RawMessage // payload.data.data，由具体处理器解码
	output   interface{}
	resulter Resulter
}

// Job 任务信封 {payload:{data:{request_id, action_type, org_id, id, data}}}
type Job struct {
	Payload *JobPayload `json:"payload"`
}

type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

type JobPayloadData struct {
	JobMeta
	Data json.RawMessage `json:"data"`
}

// JobMeta 任务元信息，贯穿日志与结果通知
type JobMeta struct {
	RequestID  string `json:"request_id"`
	ActionType string `json:"action_type"`
	OrgID      string `json:"org_id"`
	ID         string `json:"id"` // 分析记录 ID
}

// Response 写入 JobResp.Data 的处理结果
type Response struct {
	Error     *errorutil.Error `json:"error,omitempty"`
	Result    interface{}      `json:"result,omitempty"`
	Processed bool             `json:"processed"`
	Meta      *JobMeta         `json:"meta,omitempty"`
}

// ParseJob 解析任务信封；信封损坏不可重试。request_id 缺失时生成
func (b *BaseHandler) ParseJob(ctx context.Context, rawData []byte) error {
	var job Job
	if err := json.Unmarshal(rawData, &job); err != nil {
		return errorutil.NonRetriable("unmarshal job envelope", err)
	}
	if job.Payload == nil || job.Payload.Data == nil {
		return errorutil.NonRetriable("job envelope has no payload.data", nil)
	}

	meta := job.Payload.Data.JobMeta
	if meta.RequestID == "" {
		meta.RequestID = uuid.New().String()
	}
	b.meta = &meta
	b.payload = job.Payload.Data.Data
	return nil
}

// DecodePayload 将业务数据解析到 out
func (b *BaseHandler) DecodePayload(out interface{}) error {
	if len(b.payload) == 0 || string(b.payload) == "null" {
		return errorutil.NonRetriable("job payload data is empty", nil)
	}
	if err := json.Unmarshal(b.payload, out); err != nil {
		return errorutil.NonRetriable("unmarshal job payload", err)
	}
	return nil
}

// WrapResponse 成功响应
func (b *BaseHandler) WrapResponse(ctx context.Context, output interface{}) ([]byte, error) {
	data, err := json.Marshal(&Response{Result: output, Processed: true, Meta: b.meta})
	if err != nil {
		return nil, errorutil.Retriable("marshal job response", err)
	}
	return data, nil
}

// WrapErrorResponse 失败响应；返回的 error 保留可重试标记，供上层决定 Release 或 Bury
func (b *BaseHandler) WrapErrorResponse(ctx context.Context, err error) ([]byte, error) {
	if err == nil {
		return b.WrapResponse(ctx, b.output)
	}
	wrapped := errorutil.Wrap(err)
	data, marshalErr := json.Marshal(&Response{Error: wrapped, Meta: b.meta})
	if marshalErr != nil {
		return nil, wrapped
	}
	return data, wrapped
}

// GetMeta 获取任务元信息
func (b *BaseHandler) GetMeta() *JobMeta {
	return b.meta
}

// SetOutput 设置输出
func (b *BaseHandler) SetOutput(output interface{}) {
	b.output = output
}

// GetOutput 获取输出
func (b *BaseHandler) GetOutput() interface{} {
	return b.output
}

// SetResulter 设置结果处理器
func (b *BaseHandler) SetResulter(resulter Resulter) {
	b.resulter = resulter
}

// GetResulter 获取结果处理器
func (b *BaseHandler) GetResulter() Resulter {
	return b.resulter
}

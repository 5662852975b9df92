package dfm

import (
	"errors"
	"fmt"
)

// ErrInvalidQuote 报价参数无法计算
var ErrInvalidQuote = errors.New("invalid quote")

// MalformedGeometryError CAD 数据不是键值结构，无法归一化
type MalformedGeometryError struct {
	Reason string
	Err    error
}

func (e *MalformedGeometryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed geometry: %s: %v", e.Reason, e.Err)
	}
	return "malformed geometry: " + e.Reason
}

func (e *MalformedGeometryError) Unwrap() error { return e.Err }

// InternalScoringError 评分或成本计算阶段的内部异常，引擎会降级而不是向上抛出
type InternalScoringError struct {
	Stage string
	Err   error
}

func (e *InternalScoringError) Error() string {
	return fmt.Sprintf("internal scoring error at %s: %v", e.Stage, e.Err)
}

func (e *InternalScoringError) Unwrap() error { return e.Err }

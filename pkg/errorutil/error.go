package errorutil

import (
	"errors"
	"fmt"
)

// Error 错误结构（包含可重试标记）
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
	cause      error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Unwrap 返回原始错误，便于 errors.Is / errors.As 继续匹配
func (e *Error) Unwrap() error {
	return e.cause
}

// Retriable 创建可重试错误（远端故障、存储临时不可用等）
func Retriable(message string, cause error) *Error {
	return newError(500, message, true, cause)
}

// NonRetriable 创建不可重试错误（输入无法解析、记录不存在等）
func NonRetriable(message string, cause error) *Error {
	return newError(400, message, false, cause)
}

func newError(code int, message string, retryable bool, cause error) *Error {
	e := &Error{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		cause:     cause,
	}
	if cause != nil {
		e.Message = fmt.Sprintf("%s: %v", message, cause)
		e.DevDetails = fmt.Sprintf("%+v", cause)
	}
	return e
}

// Wrap 包装错误；未标记的错误按不可重试处理
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Code:       500,
		Message:    err.Error(),
		Retryable:  false,
		DevDetails: fmt.Sprintf("%+v", err),
		cause:      err,
	}
}

// IsRetryable 判断错误链中是否带有可重试标记
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

package fallback

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRemoteResponse 远端响应不符合结果结构
var ErrInvalidRemoteResponse = errors.New("invalid remote response")

// RemoteUnavailableError 远端不可达、返回非 2xx 或不健康
type RemoteUnavailableError struct {
	Op  string
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote %s unavailable: %v", e.Op, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

// RemoteTimeoutError 远端调用超时
type RemoteTimeoutError struct {
	Op      string
	Timeout time.Duration
	Err     error
}

func (e *RemoteTimeoutError) Error() string {
	return fmt.Sprintf("remote %s timed out after %s", e.Op, e.Timeout)
}

func (e *RemoteTimeoutError) Unwrap() error { return e.Err }

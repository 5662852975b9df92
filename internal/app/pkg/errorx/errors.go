package errorx

import "errors"

// HTTP 层业务错误，handler 通过 errors.Is 映射状态码
var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrMalformedInput   = errors.New("malformed input")
	ErrUnauthorized     = errors.New("missing or invalid api key")
)

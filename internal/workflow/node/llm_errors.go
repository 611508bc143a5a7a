package node

import (
	"context"
	"errors"
	"strings"
)

// IsRetryableError 判断 LLM 调用失败是否值得重试。
// 限流、超时、连接中断与上游 5xx 视为瞬时故障；
// 认证失败与参数错误重试无意义。
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return true
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return true
	case strings.Contains(msg, "connection reset"), strings.Contains(msg, "connection refused"):
		return true
	case strings.Contains(msg, "eof"):
		return true
	case strings.Contains(msg, "500"), strings.Contains(msg, "502"),
		strings.Contains(msg, "503"), strings.Contains(msg, "504"):
		return true
	case strings.Contains(msg, "overloaded"), strings.Contains(msg, "server error"):
		return true
	default:
		return false
	}
}

func IsResponseFormatUnsupportedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "response_format"):
		return true
	case strings.Contains(msg, "json_schema"):
		return true
	case strings.Contains(msg, "unknown parameter") && strings.Contains(msg, "response"):
		return true
	default:
		return false
	}
}

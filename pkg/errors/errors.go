// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证授权错误 (2xxx)
	CodeTokenExpired     ErrorCode = "2001"
	CodeTokenInvalid     ErrorCode = "2002"
	CodeTokenMissing     ErrorCode = "2003"
	CodePermissionDenied ErrorCode = "2004"

	// 资源错误 (3xxx)
	// CodeNotFoundOrAccessDenied 统一表达“不存在或无权访问”，
	// 响应上不区分两种情况，避免向非属主泄露资源存在性。
	CodeProjectNotFound        ErrorCode = "3001"
	CodeOutputNotFound         ErrorCode = "3002"
	CodeNotFoundOrAccessDenied ErrorCode = "3003"

	// 业务错误 (4xxx)
	CodeQuotaExceeded       ErrorCode = "4001"
	CodeUnsupportedPlatform ErrorCode = "4002"
	CodeGenerationFailed    ErrorCode = "4003"
	CodeInvalidContentPack  ErrorCode = "4004"
	CodeNoOriginalContent   ErrorCode = "4005"
	CodeVersionMismatch     ErrorCode = "4006"
	CodeInsufficientContent ErrorCode = "4007"

	// 外部服务错误 (5xxx)
	CodeDatabaseError    ErrorCode = "5001"
	CodeCacheError       ErrorCode = "5002"
	CodeLLMProviderError ErrorCode = "5003"
	CodeTranscribeError  ErrorCode = "5004"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Newf 创建带格式化消息的应用错误
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeUnsupportedPlatform, CodeInsufficientContent:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing:
		return http.StatusUnauthorized
	case CodeForbidden, CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound, CodeProjectNotFound, CodeOutputNotFound, CodeNotFoundOrAccessDenied:
		return http.StatusNotFound
	case CodeConflict, CodeNoOriginalContent, CodeVersionMismatch:
		return http.StatusConflict
	case CodeQuotaExceeded:
		return http.StatusPaymentRequired
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeGenerationFailed, CodeInvalidContentPack, CodeLLMProviderError:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")

	ErrProjectNotFound        = New(CodeProjectNotFound, "project not found")
	ErrNotFoundOrAccessDenied = New(CodeNotFoundOrAccessDenied, "resource not found")

	ErrQuotaExceeded       = New(CodeQuotaExceeded, "plan quota exceeded")
	ErrGenerationFailed    = New(CodeGenerationFailed, "content generation failed")
	ErrInvalidContentPack  = New(CodeInvalidContentPack, "invalid content pack")
	ErrNoOriginalContent   = New(CodeNoOriginalContent, "no original content recorded")
	ErrVersionMismatch     = New(CodeVersionMismatch, "version does not belong to output")
	ErrInsufficientContent = New(CodeInsufficientContent, "insufficient content")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// HasCode 判断错误链上是否存在指定错误码
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

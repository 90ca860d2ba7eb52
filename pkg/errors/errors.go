package errors

import (
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode int

const (
	// 请求解析错误 (1000-1999)：Parsing 状态之前发生，致命
	ErrCodeMissingField ErrorCode = 1000 + iota
	ErrCodeInvalidField
	ErrCodeReadRequest

	// 建立子进程错误 (2000-2999)：Pipes open / Forked 状态之前发生，致命
	ErrCodePipeCreate ErrorCode = 2000 + iota
	ErrCodeFork
	ErrCodeCredential

	// 运行期异常 (3000-3999)：Running/Draining 状态中发生，记录但不致命
	ErrCodePumpRead ErrorCode = 3000 + iota
	ErrCodeMemorySample
	ErrCodeTerminate
)

// WatchdogError 评测系统错误
type WatchdogError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *WatchdogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持错误链
func (e *WatchdogError) Unwrap() error {
	return e.Err
}

// New 创建新的错误
func New(code ErrorCode, message string) *WatchdogError {
	return &WatchdogError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装已有错误
func Wrap(code ErrorCode, message string, err error) *WatchdogError {
	return &WatchdogError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewMissingFieldError 创建请求缺字段错误（Parsing 状态失败，致命）
func NewMissingFieldError(field string) *WatchdogError {
	return New(ErrCodeMissingField, fmt.Sprintf("request missing required field: %s", field))
}

// NewInvalidFieldError 创建请求字段非法错误
func NewInvalidFieldError(field, reason string) *WatchdogError {
	return New(ErrCodeInvalidField, fmt.Sprintf("request field %s invalid: %s", field, reason))
}

// IsErrorCode 判断错误是否为指定错误码
func IsErrorCode(err error, code ErrorCode) bool {
	if wdErr, ok := err.(*WatchdogError); ok {
		return wdErr.Code == code
	}
	return false
}

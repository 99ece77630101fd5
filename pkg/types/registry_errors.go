// Package types 定义注册表相关的错误类型
package types

import (
	"errors"
	"fmt"
)

// 注册表基础设施错误
//
// 这些错误不属于注册操作的三类拒绝原因，传输层统一映射为内部错误。
var (
	// ErrSenderConfigNotInitialized 所有者配置尚未初始化
	// 配置缺失时注册操作直接失败关闭（没有所有者意味着任何调用者都无权限）
	ErrSenderConfigNotInitialized = errors.New("sender config not initialized")

	// ErrSenderConfigExists 所有者配置已存在，初始化只允许执行一次
	ErrSenderConfigExists = errors.New("sender config already initialized")

	// ErrTokenNotFound 查询的Mint没有注册记录（只读路径使用）
	ErrTokenNotFound = errors.New("token not registered")

	// ErrTokenExists 目标Mint已有注册记录（仓储层的创建冲突哨兵）
	ErrTokenExists = errors.New("token already registered")
)

// RegistrationRejectReason 注册操作的拒绝原因枚举
type RegistrationRejectReason int32

const (
	RegistrationRejectNone RegistrationRejectReason = iota

	// RegistrationRejectOwnerOnly 调用者不是配置中记录的所有者
	RegistrationRejectOwnerOnly

	// RegistrationRejectAlreadyRegistered 目标记录已处于注册状态
	RegistrationRejectAlreadyRegistered

	// RegistrationRejectZeroSwapRate 兑换汇率为0
	RegistrationRejectZeroSwapRate

	// RegistrationRejectNativeSwapNotAllowed 原生资产携带了非零兑换额度
	RegistrationRejectNativeSwapNotAllowed
)

// RegistrationError 注册操作错误
//
// 拒绝原因归入三类：授权错误（OwnerOnly）、状态冲突（AlreadyRegistered）、
// 校验错误（ZeroSwapRate / NativeSwapNotAllowed）。任何一类错误都表示操作
// 立即终止且没有发生任何状态变更。
type RegistrationError struct {
	Reason RegistrationRejectReason // 拒绝原因
	Mint   MintAddress              // 目标Mint（用于诊断）
}

// Error 实现 error 接口
func (e *RegistrationError) Error() string {
	switch e.Reason {
	case RegistrationRejectOwnerOnly:
		return "owner only: caller is not the registered owner"
	case RegistrationRejectAlreadyRegistered:
		return fmt.Sprintf("token already registered (mint=%s)", e.Mint)
	case RegistrationRejectZeroSwapRate:
		return fmt.Sprintf("zero swap rate (mint=%s)", e.Mint)
	case RegistrationRejectNativeSwapNotAllowed:
		return fmt.Sprintf("swaps not allowed for native mint (mint=%s)", e.Mint)
	default:
		return fmt.Sprintf("registration rejected: unknown reason (mint=%s)", e.Mint)
	}
}

// IsAuthorizationError 是否为授权类错误
func (e *RegistrationError) IsAuthorizationError() bool {
	return e.Reason == RegistrationRejectOwnerOnly
}

// IsStateConflict 是否为状态冲突类错误
func (e *RegistrationError) IsStateConflict() bool {
	return e.Reason == RegistrationRejectAlreadyRegistered
}

// IsValidationError 是否为校验类错误
func (e *RegistrationError) IsValidationError() bool {
	return e.Reason == RegistrationRejectZeroSwapRate ||
		e.Reason == RegistrationRejectNativeSwapNotAllowed
}

// IsRegistrationError 检查错误是否为注册操作错误
func IsRegistrationError(err error) (*RegistrationError, bool) {
	if err == nil {
		return nil, false
	}
	var regErr *RegistrationError
	if errors.As(err, &regErr) {
		return regErr, true
	}
	return nil, false
}

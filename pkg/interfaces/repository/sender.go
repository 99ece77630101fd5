package repository

import (
	"context"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// SenderConfigRepository 所有者配置仓储接口
//
// 🎯 **中继器所有者配置的单槽位仓储**
//
// 所有者配置占用固定的单一存储槽位，初始化只允许执行一次。
// 注册核心对本仓储只读，唯一的写路径是启动期的初始化流程。
//
// 📋 **核心功能**：
// - 所有者读取：GetOwner - 注册授权检查的数据来源
// - 一次性初始化：InitializeOwner - 创建所有者配置槽位
type SenderConfigRepository interface {
	// GetOwner 读取所有者主体
	//
	// 参数：
	//   - ctx: 上下文对象，用于超时控制和取消操作
	//
	// 返回：
	//   - types.Principal: 所有者主体（32字节）
	//   - error: 配置未初始化时返回 types.ErrSenderConfigNotInitialized
	GetOwner(ctx context.Context) (types.Principal, error)

	// InitializeOwner 一次性初始化所有者配置
	//
	// 在单个串行化事务内完成存在性检查与配置写入，
	// 槽位已存在时返回 types.ErrSenderConfigExists，事务回滚。
	//
	// 参数：
	//   - ctx: 上下文对象，用于超时控制和取消操作
	//   - owner: 所有者主体（32字节）
	//
	// 返回：
	//   - error: types.ErrSenderConfigExists 或存储错误
	InitializeOwner(ctx context.Context, owner types.Principal) error
}

package repository

import (
	"context"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// TokenRepository 注册记录仓储接口
//
// 🎯 **代币注册记录的确定性寻址仓储**
//
// 基于"Mint地址到存储键"的确定性映射设计，每个Mint地址对应
// 且仅对应一个注册记录槽位。相同Mint永远落在相同键上，
// 不同Mint永远不会发生键冲突。
//
// 📋 **核心功能**：
// - 存在性探测：GetToken / HasToken - 基于Mint地址的精确查询
// - 原子创建：CreateToken - 检查并写入在同一事务内完成
// - 全量枚举：ListTokens - 注册表导出与列表查询
//
// 💡 **设计原则**：
// - 确定性寻址：固定命名空间前缀 + Mint地址原始字节
// - 只增不改：记录一经创建不可变更，没有更新或删除路径
// - 原子性：创建操作要么完整落盘，要么完全不落盘
type TokenRepository interface {
	// GetToken 获取指定Mint的注册记录
	//
	// 通过确定性寻址探测记录槽位。
	//
	// 参数：
	//   - ctx: 上下文对象，用于超时控制和取消操作
	//   - mint: 资产的Mint地址（32字节）
	//
	// 返回：
	//   - *types.RegisteredToken: 注册记录，记录不存在时为nil且error为nil
	//   - error: 存储访问错误信息
	GetToken(ctx context.Context, mint types.MintAddress) (*types.RegisteredToken, error)

	// HasToken 检查指定Mint是否已有注册记录
	//
	// 参数：
	//   - ctx: 上下文对象，用于超时控制和取消操作
	//   - mint: 资产的Mint地址（32字节）
	//
	// 返回：
	//   - bool: true表示记录存在
	//   - error: 存储访问错误信息
	HasToken(ctx context.Context, mint types.MintAddress) (bool, error)

	// CreateToken 原子地创建注册记录
	//
	// 在单个串行化事务内完成存在性检查与记录写入：
	// 1. 探测目标槽位是否已被占用
	// 2. 已占用时返回 types.ErrTokenExists，事务回滚
	// 3. 未占用时写入完整记录并提交
	//
	// 并发提交冲突时返回 storage.ErrTxnConflict，调用方可重试。
	//
	// 参数：
	//   - ctx: 上下文对象，用于超时控制和取消操作
	//   - mint: 资产的Mint地址（32字节）
	//   - token: 要写入的完整注册记录
	//
	// 返回：
	//   - error: types.ErrTokenExists、storage.ErrTxnConflict 或存储错误
	CreateToken(ctx context.Context, mint types.MintAddress, token *types.RegisteredToken) error

	// ListTokens 枚举全部注册记录
	//
	// 按命名空间前缀扫描所有记录槽位，用于列表查询与注册表导出。
	//
	// 参数：
	//   - ctx: 上下文对象，用于超时控制和取消操作
	//
	// 返回：
	//   - []types.TokenListEntry: 注册记录列表（未排序）
	//   - error: 存储访问错误信息
	ListTokens(ctx context.Context) ([]types.TokenListEntry, error)
}

package registry

import (
	"context"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// TokenRegistry 代币注册表服务接口（对外公共接口）
//
// 🎯 核心职责：
// - 承载代币注册的唯一写路径，执行有序的前置检查与原子写入。
// - 对外暴露稳定的查询契约，供 API / CLI / 其他模块使用。
type TokenRegistry interface {
	// Register 注册一个代币
	//
	// 前置检查按固定顺序执行，任一失败立即终止：
	// 1. caller 必须等于所有者配置中的所有者，否则授权失败
	// 2. mint 必须尚未注册，否则状态冲突
	// 3. swapRate 必须严格大于0，否则校验失败
	// 4. 原生资产的 maxNativeSwapAmount 必须为0，否则校验失败
	//
	// 全部通过后原子写入完整记录并返回。失败路径不产生任何写入。
	Register(ctx context.Context, caller types.Principal, mint types.MintAddress, swapRate, maxNativeSwapAmount uint64) (*types.RegisteredToken, error)

	// GetToken 查询单个注册记录
	// 记录不存在时返回 types.ErrTokenNotFound
	GetToken(ctx context.Context, mint types.MintAddress) (*types.RegisteredToken, error)

	// ListTokens 枚举全部注册记录，按Mint地址字典序排序
	ListTokens(ctx context.Context) ([]types.TokenListEntry, error)
}

// ConfigStore 所有者配置服务接口
//
// 注册核心对本服务只读：Register 只调用 GetOwner，
// InitializeOwner 仅由启动期引导流程和管理接口使用。
type ConfigStore interface {
	// GetOwner 读取当前所有者主体
	// 配置未初始化时返回 types.ErrSenderConfigNotInitialized
	GetOwner(ctx context.Context) (types.Principal, error)

	// InitializeOwner 一次性初始化所有者配置
	// 配置已存在时返回 types.ErrSenderConfigExists
	InitializeOwner(ctx context.Context, owner types.Principal) error
}

// AssetDirectory 资产目录服务接口
//
// 提供资产身份的只读判定，注册核心用它区分原生资产与普通代币。
type AssetDirectory interface {
	// IsNativeAsset 判断指定Mint是否为原生资产（wrapped SOL）
	IsNativeAsset(mint types.MintAddress) bool

	// NativeMint 返回原生资产的Mint地址
	NativeMint() types.MintAddress
}

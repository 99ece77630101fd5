package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/repository"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// ============================================================================
//                           🏗️ 注册记录数据操作实现
// ============================================================================

// 存储键前缀定义
const (
	// TokenKeyPrefix 注册记录键前缀: mint:<mint原始32字节> -> 17字节记录
	TokenKeyPrefix = "mint:"

	// SenderConfigKey 所有者配置的固定单槽位键
	SenderConfigKey = "config:sender"
)

// TokenStorage 注册记录仓储核心组件
//
// 🎯 **确定性寻址仓储**：
// 每个Mint地址通过固定前缀映射到唯一的存储键，相同Mint永远
// 落在相同键上。记录只增不改，创建路径在串行化事务内完成
// 存在性检查与写入。
type TokenStorage struct {
	storage storage.BadgerStore
	logger  log.Logger
}

// 编译期接口断言
var _ repository.TokenRepository = (*TokenStorage)(nil)

// NewTokenStorage 创建注册记录仓储
func NewTokenStorage(badgerStore storage.BadgerStore, logger log.Logger) (*TokenStorage, error) {
	if badgerStore == nil {
		return nil, fmt.Errorf("BadgerStore不能为空")
	}
	return &TokenStorage{
		storage: badgerStore,
		logger:  logger,
	}, nil
}

// GetToken 根据Mint地址获取注册记录
// 记录不存在时返回 (nil, nil)
func (ts *TokenStorage) GetToken(ctx context.Context, mint types.MintAddress) (*types.RegisteredToken, error) {
	key := formatTokenKey(mint)
	data, err := ts.storage.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("获取注册记录失败: %w", err)
	}

	if data == nil {
		return nil, nil
	}

	token, err := types.UnmarshalRegisteredToken(data)
	if err != nil {
		return nil, fmt.Errorf("反序列化注册记录失败 - mint: %s: %w", mint, err)
	}

	return token, nil
}

// HasToken 检查指定Mint是否已有注册记录
func (ts *TokenStorage) HasToken(ctx context.Context, mint types.MintAddress) (bool, error) {
	key := formatTokenKey(mint)
	exists, err := ts.storage.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("检查注册记录失败: %w", err)
	}
	return exists, nil
}

// CreateToken 原子地创建注册记录
//
// 🎯 **检查并写入核心**：
// 存在性检查与记录写入在同一个串行化事务内完成，要么完整落盘，
// 要么完全不落盘。并发创建同一Mint时，后提交的事务因读写冲突
// 失败，调用方按 storage.ErrTxnConflict 重试后会命中已占用分支。
//
// 返回：
//   - types.ErrTokenExists: 目标槽位已被占用
//   - storage.ErrTxnConflict: 并发提交冲突，可重试
func (ts *TokenStorage) CreateToken(ctx context.Context, mint types.MintAddress, token *types.RegisteredToken) error {
	if token == nil {
		return fmt.Errorf("注册记录不能为空")
	}

	key := formatTokenKey(mint)
	record := token.Marshal()

	err := ts.storage.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		// 1. 探测目标槽位是否已被占用
		// 使用Get而非Exists，确保事务的读指纹覆盖该键
		existing, err := tx.Get(key)
		if err != nil {
			return fmt.Errorf("检查注册记录失败: %w", err)
		}
		if existing != nil {
			return types.ErrTokenExists
		}

		// 2. 写入完整记录
		if err := tx.Set(key, record); err != nil {
			return fmt.Errorf("写入注册记录失败: %w", err)
		}

		return nil
	})

	if err != nil {
		// 哨兵错误保持裸露，调用方直接用errors.Is判定
		if errors.Is(err, types.ErrTokenExists) {
			return types.ErrTokenExists
		}
		if errors.Is(err, storage.ErrTxnConflict) {
			return storage.ErrTxnConflict
		}
		return fmt.Errorf("创建注册记录失败: %w", err)
	}

	if ts.logger != nil {
		ts.logger.Infof("注册记录已创建 - mint: %s, swapRate: %d, maxNativeSwapAmount: %d",
			mint, token.SwapRate, token.MaxNativeSwapAmount)
	}

	return nil
}

// ListTokens 枚举全部注册记录
//
// 按命名空间前缀扫描所有记录槽位。损坏的条目直接报错而不是跳过，
// 注册表是授权数据，静默丢弃会掩盖存储损坏。
func (ts *TokenStorage) ListTokens(ctx context.Context) ([]types.TokenListEntry, error) {
	results, err := ts.storage.PrefixScan(ctx, []byte(TokenKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("扫描注册记录失败: %w", err)
	}

	entries := make([]types.TokenListEntry, 0, len(results))
	for key, value := range results {
		mint, err := parseTokenKey([]byte(key))
		if err != nil {
			return nil, fmt.Errorf("解析注册记录键失败: %w", err)
		}

		token, err := types.UnmarshalRegisteredToken(value)
		if err != nil {
			return nil, fmt.Errorf("反序列化注册记录失败 - mint: %s: %w", mint, err)
		}

		entries = append(entries, types.TokenListEntry{
			Mint:  mint,
			Token: *token,
		})
	}

	return entries, nil
}

// 格式化注册记录存储键
func formatTokenKey(mint types.MintAddress) []byte {
	key := make([]byte, len(TokenKeyPrefix)+types.MintAddressLength)
	copy(key, TokenKeyPrefix)
	copy(key[len(TokenKeyPrefix):], mint[:])
	return key
}

// 从存储键还原Mint地址
func parseTokenKey(key []byte) (types.MintAddress, error) {
	var mint types.MintAddress
	if len(key) != len(TokenKeyPrefix)+types.MintAddressLength {
		return mint, fmt.Errorf("注册记录键长度无效: %d", len(key))
	}
	copy(mint[:], key[len(TokenKeyPrefix):])
	return mint, nil
}

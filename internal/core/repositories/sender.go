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
//                           🏗️ 所有者配置数据操作实现
// ============================================================================

// SenderConfigStorage 所有者配置仓储核心组件
//
// 🎯 **单槽位配置仓储**：
// 所有者配置占用固定的单一存储键，初始化只允许执行一次。
// 注册核心对本仓储只读。
type SenderConfigStorage struct {
	storage storage.BadgerStore
	logger  log.Logger
}

// 编译期接口断言
var _ repository.SenderConfigRepository = (*SenderConfigStorage)(nil)

// NewSenderConfigStorage 创建所有者配置仓储
func NewSenderConfigStorage(badgerStore storage.BadgerStore, logger log.Logger) (*SenderConfigStorage, error) {
	if badgerStore == nil {
		return nil, fmt.Errorf("BadgerStore不能为空")
	}
	return &SenderConfigStorage{
		storage: badgerStore,
		logger:  logger,
	}, nil
}

// GetOwner 读取所有者主体
// 配置未初始化时返回 types.ErrSenderConfigNotInitialized
func (ss *SenderConfigStorage) GetOwner(ctx context.Context) (types.Principal, error) {
	var owner types.Principal

	data, err := ss.storage.Get(ctx, []byte(SenderConfigKey))
	if err != nil {
		return owner, fmt.Errorf("获取所有者配置失败: %w", err)
	}

	if data == nil {
		return owner, types.ErrSenderConfigNotInitialized
	}

	owner, err = types.PrincipalFromBytes(data)
	if err != nil {
		return owner, fmt.Errorf("反序列化所有者配置失败: %w", err)
	}

	return owner, nil
}

// InitializeOwner 一次性初始化所有者配置
//
// 存在性检查与配置写入在同一个串行化事务内完成。
//
// 返回：
//   - types.ErrSenderConfigExists: 配置槽位已存在
//   - storage.ErrTxnConflict: 并发提交冲突，可重试
func (ss *SenderConfigStorage) InitializeOwner(ctx context.Context, owner types.Principal) error {
	if owner.IsZero() {
		return fmt.Errorf("所有者主体不能为零值")
	}

	key := []byte(SenderConfigKey)

	err := ss.storage.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		// 1. 探测配置槽位是否已存在
		// 使用Get而非Exists，确保事务的读指纹覆盖该键
		existing, err := tx.Get(key)
		if err != nil {
			return fmt.Errorf("检查所有者配置失败: %w", err)
		}
		if existing != nil {
			return types.ErrSenderConfigExists
		}

		// 2. 写入所有者主体
		if err := tx.Set(key, owner.Bytes()); err != nil {
			return fmt.Errorf("写入所有者配置失败: %w", err)
		}

		return nil
	})

	if err != nil {
		// 哨兵错误保持裸露，调用方直接用errors.Is判定
		if errors.Is(err, types.ErrSenderConfigExists) {
			return types.ErrSenderConfigExists
		}
		if errors.Is(err, storage.ErrTxnConflict) {
			return storage.ErrTxnConflict
		}
		return fmt.Errorf("初始化所有者配置失败: %w", err)
	}

	if ss.logger != nil {
		ss.logger.Infof("所有者配置已初始化 - owner: %s", owner)
	}

	return nil
}

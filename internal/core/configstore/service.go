// Package configstore 提供所有者配置服务
//
// 🎯 **所有者配置核心 (Owner Config Store)**
//
// 注册授权检查的数据来源。所有者配置占用固定的单一存储槽位，
// 初始化只允许执行一次，注册核心对本服务只读。
package configstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	registryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/repository"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// Service 所有者配置服务
type Service struct {
	repo     repository.SenderConfigRepository
	eventBus event.EventBus
	logger   log.Logger
}

// 编译期接口断言
var _ registry.ConfigStore = (*Service)(nil)

// NewService 创建所有者配置服务
func NewService(repo repository.SenderConfigRepository, eventBus event.EventBus, logger log.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("SenderConfigRepository不能为空")
	}
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}, nil
}

// GetOwner 读取当前所有者主体
// 配置未初始化时返回 types.ErrSenderConfigNotInitialized
func (s *Service) GetOwner(ctx context.Context) (types.Principal, error) {
	return s.repo.GetOwner(ctx)
}

// InitializeOwner 一次性初始化所有者配置
// 配置已存在时返回 types.ErrSenderConfigExists，不产生任何写入
func (s *Service) InitializeOwner(ctx context.Context, owner types.Principal) error {
	if err := s.repo.InitializeOwner(ctx, owner); err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(event.EventTypeOwnerInitialized, &types.OwnerInitializedEventData{
			Owner:     owner.String(),
			Timestamp: time.Now(),
		})
	}

	if s.logger != nil {
		s.logger.Infof("所有者配置初始化完成 - owner: %s", owner)
	}

	return nil
}

// BootstrapOwner 启动期所有者引导
//
// 配置文件携带owner时尝试一次性初始化：
//   - 槽位为空：写入并发布初始化事件
//   - 槽位已存在：幂等跳过，与配置不一致时告警但不失败
//   - owner格式非法：启动失败
//
// 配置未携带owner时为无操作，所有者可以稍后通过管理接口初始化。
func BootstrapOwner(ctx context.Context, svc registry.ConfigStore, cfg *registryconfig.Config, logger log.Logger) error {
	ownerStr := cfg.GetOwner()
	if ownerStr == "" {
		if logger != nil {
			logger.Debug("配置未携带所有者，跳过启动期引导")
		}
		return nil
	}

	owner, err := types.ParsePrincipal(ownerStr)
	if err != nil {
		return fmt.Errorf("解析引导所有者失败: %w", err)
	}

	err = svc.InitializeOwner(ctx, owner)
	switch {
	case err == nil:
		if logger != nil {
			logger.Infof("所有者配置引导完成 - owner: %s", owner)
		}
	case errors.Is(err, types.ErrSenderConfigExists):
		// 已初始化过，保持已生效的所有者
		existing, getErr := svc.GetOwner(ctx)
		if getErr == nil && existing != owner && logger != nil {
			logger.Warnf("配置文件中的所有者与已初始化的所有者不一致 - 配置: %s, 生效: %s",
				owner, existing)
		}
	default:
		return fmt.Errorf("所有者配置引导失败: %w", err)
	}

	return nil
}

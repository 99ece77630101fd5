// Package registry 实现代币注册核心服务
//
// 🎯 **注册表的唯一写路径 (Token Registry Core)**
//
// 注册操作按固定顺序执行四项前置检查，全部通过后原子写入注册记录：
//  1. 授权检查：调用者必须等于所有者配置中的所有者
//  2. 状态检查：目标Mint必须尚未注册
//  3. 汇率检查：兑换汇率必须严格大于0
//  4. 原生资产检查：原生资产的最大兑换额度必须为0
//
// 任一检查失败立即终止并返回对应类别的RegistrationError，失败路径
// 不产生任何状态变更。写入的权威存储是BadgerDB，内存缓存只加速读路径。
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	registryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	registryiface "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/repository"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// Service 代币注册核心服务实现
type Service struct {
	tokens      repository.TokenRepository
	configStore registryiface.ConfigStore
	assets      registryiface.AssetDirectory
	cache       storage.MemoryStore // 可为nil：内存缓存降级时读路径直接回源
	eventBus    event.EventBus      // 可为nil：事件总线未启用时静默跳过发布
	config      *registryconfig.Config
	logger      log.Logger
}

// 编译期接口实现检查
var _ registryiface.TokenRegistry = (*Service)(nil)

// NewService 创建代币注册核心服务
//
// tokens、configStore、assets、config 为必需依赖；
// cache、eventBus、logger 允许为nil，对应能力降级。
func NewService(
	tokens repository.TokenRepository,
	configStore registryiface.ConfigStore,
	assets registryiface.AssetDirectory,
	cache storage.MemoryStore,
	eventBus event.EventBus,
	config *registryconfig.Config,
	logger log.Logger,
) (*Service, error) {
	if tokens == nil {
		return nil, fmt.Errorf("TokenRepository不能为空")
	}
	if configStore == nil {
		return nil, fmt.Errorf("ConfigStore不能为空")
	}
	if assets == nil {
		return nil, fmt.Errorf("AssetDirectory不能为空")
	}
	if config == nil {
		return nil, fmt.Errorf("注册表配置不能为空")
	}

	return &Service{
		tokens:      tokens,
		configStore: configStore,
		assets:      assets,
		cache:       cache,
		eventBus:    eventBus,
		config:      config,
		logger:      logger,
	}, nil
}

// Register 注册一个代币
//
// 前置检查顺序固定：授权 → 注册状态 → 汇率 → 原生资产约束。
// 仓储层在提交事务内复查注册状态，并发竞争的落败方在重试后
// 会观察到胜者的记录并以状态冲突终止。
func (s *Service) Register(
	ctx context.Context,
	caller types.Principal,
	mint types.MintAddress,
	swapRate, maxNativeSwapAmount uint64,
) (*types.RegisteredToken, error) {
	timer := prometheus.NewTimer(registryRegisterDuration)
	defer timer.ObserveDuration()

	// 检查1：调用者必须是所有者配置中记录的所有者
	// 配置未初始化按基础设施错误处理：没有所有者意味着任何调用者都无权限
	owner, err := s.configStore.GetOwner(ctx)
	if err != nil {
		registryRegistrations.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("读取所有者配置失败: %w", err)
	}
	if caller != owner {
		registryRegistrations.WithLabelValues(outcomeUnauthorized).Inc()
		if s.logger != nil {
			s.logger.Warnf("注册被拒绝（非所有者调用） - mint: %s, caller: %s", mint, caller)
		}
		return nil, &types.RegistrationError{Reason: types.RegistrationRejectOwnerOnly, Mint: mint}
	}

	maxRetries := s.config.GetTxnMaxRetries()
	if maxRetries < 0 {
		maxRetries = 0
	}

	var token *types.RegisteredToken
	for attempt := 0; ; attempt++ {
		token, err = s.registerOnce(ctx, mint, swapRate, maxNativeSwapAmount)
		if err == nil {
			break
		}

		// 串行化事务冲突：重试会重新执行完整的前置检查序列，
		// 因此竞争落败方在下一轮会命中已注册状态并得到状态冲突
		if errors.Is(err, storage.ErrTxnConflict) {
			if attempt < maxRetries {
				registryTxnRetries.Inc()
				if s.logger != nil {
					s.logger.Debugf("注册事务冲突，重试 %d/%d - mint: %s", attempt+1, maxRetries, mint)
				}
				continue
			}
			registryRegistrations.WithLabelValues(outcomeError).Inc()
			return nil, fmt.Errorf("注册事务冲突重试耗尽（%d次）: %w", maxRetries, err)
		}

		if regErr, ok := types.IsRegistrationError(err); ok {
			if regErr.IsStateConflict() {
				registryRegistrations.WithLabelValues(outcomeConflict).Inc()
			} else {
				registryRegistrations.WithLabelValues(outcomeInvalid).Inc()
			}
			return nil, err
		}

		registryRegistrations.WithLabelValues(outcomeError).Inc()
		return nil, err
	}

	registryRegistrations.WithLabelValues(outcomeRegistered).Inc()
	s.cacheToken(ctx, mint, token)
	s.publishRegistered(ctx, mint, token)

	if s.logger != nil {
		s.logger.Infof("✅ 代币注册成功 - mint: %s, swapRate: %d, maxNativeSwapAmount: %d",
			mint, swapRate, maxNativeSwapAmount)
	}
	return token, nil
}

// registerOnce 执行一轮完整的前置检查与原子创建
//
// 检查2到检查4在这里按序执行，任一失败立即返回对应的RegistrationError，
// 不触达写路径。创建冲突（ErrTokenExists）映射为状态冲突，
// 事务冲突（ErrTxnConflict）原样上抛交给重试循环。
func (s *Service) registerOnce(
	ctx context.Context,
	mint types.MintAddress,
	swapRate, maxNativeSwapAmount uint64,
) (*types.RegisteredToken, error) {
	// 检查2：目标Mint必须尚未注册
	exists, err := s.tokens.HasToken(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("探测注册状态失败: %w", err)
	}
	if exists {
		return nil, &types.RegistrationError{Reason: types.RegistrationRejectAlreadyRegistered, Mint: mint}
	}

	// 检查3：兑换汇率必须严格大于0
	if swapRate == 0 {
		return nil, &types.RegistrationError{Reason: types.RegistrationRejectZeroSwapRate, Mint: mint}
	}

	// 检查4：原生资产不允许携带非零兑换额度
	if s.assets.IsNativeAsset(mint) && maxNativeSwapAmount != 0 {
		return nil, &types.RegistrationError{Reason: types.RegistrationRejectNativeSwapNotAllowed, Mint: mint}
	}

	token := &types.RegisteredToken{
		SwapRate:            swapRate,
		MaxNativeSwapAmount: maxNativeSwapAmount,
		IsRegistered:        true,
	}

	// 仓储层在同一串行化事务内复查存在性并写入
	if err := s.tokens.CreateToken(ctx, mint, token); err != nil {
		if errors.Is(err, types.ErrTokenExists) {
			return nil, &types.RegistrationError{Reason: types.RegistrationRejectAlreadyRegistered, Mint: mint}
		}
		return nil, err
	}
	return token, nil
}

// GetToken 查询单个注册记录
//
// 先查内存缓存，未命中回源BadgerDB并回填缓存。
// 注册记录一经写入不可变，缓存命中永远不会读到过期状态。
func (s *Service) GetToken(ctx context.Context, mint types.MintAddress) (*types.RegisteredToken, error) {
	if token := s.lookupCache(ctx, mint); token != nil {
		return token, nil
	}

	token, err := s.tokens.GetToken(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("查询注册记录失败: %w", err)
	}
	if token == nil {
		return nil, types.ErrTokenNotFound
	}

	s.cacheToken(ctx, mint, token)
	return token, nil
}

// ListTokens 枚举全部注册记录，按Mint地址字节序排序
func (s *Service) ListTokens(ctx context.Context) ([]types.TokenListEntry, error) {
	entries, err := s.tokens.ListTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("枚举注册记录失败: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Mint[:], entries[j].Mint[:]) < 0
	})
	return entries, nil
}

// lookupCache 从内存缓存读取注册记录
//
// 缓存未注入、未启用、未命中或内容损坏都降级为未命中，读路径回源。
// 权威数据始终在BadgerDB，缓存故障只影响延迟不影响正确性。
func (s *Service) lookupCache(ctx context.Context, mint types.MintAddress) *types.RegisteredToken {
	if s.cache == nil || !s.config.IsCacheEnabled() {
		return nil
	}

	data, exists, err := s.cache.Get(ctx, cacheKey(mint))
	if err != nil || !exists {
		registryCacheLookups.WithLabelValues(cacheMiss).Inc()
		return nil
	}

	token, err := types.UnmarshalRegisteredToken(data)
	if err != nil {
		// 缓存内容损坏：丢弃条目并回源
		registryCacheLookups.WithLabelValues(cacheMiss).Inc()
		_ = s.cache.Delete(ctx, cacheKey(mint))
		if s.logger != nil {
			s.logger.Warnf("缓存中的注册记录损坏，已丢弃 - mint: %s, error: %v", mint, err)
		}
		return nil
	}

	registryCacheLookups.WithLabelValues(cacheHit).Inc()
	return token
}

// cacheToken 将注册记录写入内存缓存（尽力而为，失败只记日志）
func (s *Service) cacheToken(ctx context.Context, mint types.MintAddress, token *types.RegisteredToken) {
	if s.cache == nil || !s.config.IsCacheEnabled() || token == nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(mint), token.Marshal(), s.config.GetCacheTTL()); err != nil {
		if s.logger != nil {
			s.logger.Debugf("写入注册记录缓存失败 - mint: %s, error: %v", mint, err)
		}
	}
}

// publishRegistered 发布注册成功事件（事件总线未注入时静默跳过）
func (s *Service) publishRegistered(ctx context.Context, mint types.MintAddress, token *types.RegisteredToken) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(event.EventTypeTokenRegistered, &types.TokenRegisteredEventData{
		Mint:                mint.String(),
		SwapRate:            token.SwapRate,
		MaxNativeSwapAmount: token.MaxNativeSwapAmount,
		RequestID:           registryiface.RequestIDFromContext(ctx),
		Timestamp:           time.Now(),
	})
}

// cacheKey 构造注册记录的缓存键
func cacheKey(mint types.MintAddress) string {
	return "mint:" + mint.String()
}

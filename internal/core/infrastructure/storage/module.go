// Package storage 提供存储管理功能
package storage

import (
	"context"

	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/config"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider config.Provider // 配置提供者
	Logger   log.Logger      // 日志记录器
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore // BadgerDB存储（必需，失败即错误）
	MemoryStore storageInterface.MemoryStore // 内存缓存（可降级，失败时为nil，消费方需判空）
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		// 提供存储服务
		fx.Provide(ProvideServices),

		// 注册关闭钩子
		fx.Invoke(func(lc fx.Lifecycle, badgerStore storageInterface.BadgerStore, memoryStore storageInterface.MemoryStore, logger log.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					logger.Info("正在关闭存储服务...")

					// 先关缓存，后关权威存储
					if memoryStore != nil {
						if closer, ok := memoryStore.(interface{ Close() error }); ok {
							if err := closer.Close(); err != nil {
								logger.Errorf("关闭内存缓存失败: %v", err)
								// 缓存关闭失败不阻断BadgerDB的关闭
							}
						}
					}

					// 关闭BadgerDB数据库连接
					// Store.Close内部已处理LOCK文件缺失等良性错误
					if badgerStore != nil {
						if err := badgerStore.Close(); err != nil {
							logger.Errorf("关闭BadgerDB存储失败: %v", err)
							return err
						}
						logger.Info("BadgerDB存储已成功关闭")
					}

					logger.Info("存储服务已安全关闭")
					return nil
				},
			})
		}),
	)
}

// ProvideServices 提供存储服务
// 根据配置初始化各类存储引擎并返回
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	serviceOutput, err := CreateStorageServices(ServiceInput{
		Provider: params.Provider,
		Logger:   params.Logger,
	})
	if err != nil {
		return ModuleOutput{}, err
	}

	return ModuleOutput{
		BadgerStore: serviceOutput.BadgerStore,
		MemoryStore: serviceOutput.MemoryStore,
	}, nil
}

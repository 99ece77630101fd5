package registry

import (
	"go.uber.org/fx"

	registryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/config"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	registryiface "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/repository"
)

// ModuleInput 注册核心模块输入依赖
type ModuleInput struct {
	fx.In

	Provider    config.Provider             // 配置提供者
	Logger      log.Logger                  `optional:"true"` // 日志记录器（可选）
	EventBus    event.EventBus              `optional:"true"` // 事件总线（可选）
	TokenRepo   repository.TokenRepository  // 注册记录仓储
	ConfigStore registryiface.ConfigStore   // 所有者配置服务
	AssetDir    registryiface.AssetDirectory // 资产目录服务
	MemoryStore storage.MemoryStore         // 内存缓存（降级时为nil值，服务内部判空）
}

// ModuleOutput 注册核心模块输出
type ModuleOutput struct {
	fx.Out

	TokenRegistry registryiface.TokenRegistry // 代币注册表服务
}

// Module 返回注册核心模块的fx配置
func Module() fx.Option {
	return fx.Module("registry",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				registryCfg := registryconfig.NewFromOptions(input.Provider.GetRegistry())

				service, err := NewService(
					input.TokenRepo,
					input.ConfigStore,
					input.AssetDir,
					input.MemoryStore,
					input.EventBus,
					registryCfg,
					input.Logger,
				)
				if err != nil {
					return ModuleOutput{}, err
				}

				return ModuleOutput{
					TokenRegistry: service,
				}, nil
			},
		),
		fx.Invoke(func(input struct {
			fx.In
			Logger log.Logger `optional:"true"`
		}) {
			if input.Logger != nil {
				input.Logger.Info("注册核心模块已加载")
			}
		}),
	)
}

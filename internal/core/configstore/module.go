package configstore

import (
	"context"

	"go.uber.org/fx"

	registryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/config"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/repository"
)

// ModuleInput 所有者配置模块输入依赖
type ModuleInput struct {
	fx.In

	Provider   config.Provider                   // 配置提供者
	Logger     log.Logger                        `optional:"true"` // 日志记录器（可选）
	EventBus   event.EventBus                    `optional:"true"` // 事件总线（可选）
	SenderRepo repository.SenderConfigRepository // 所有者配置仓储
	Lifecycle  fx.Lifecycle                      // 生命周期管理
}

// ModuleOutput 所有者配置模块输出
type ModuleOutput struct {
	fx.Out

	ConfigStore registry.ConfigStore // 所有者配置服务
}

// Module 返回所有者配置模块的fx配置
func Module() fx.Option {
	return fx.Module("configstore",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				service, err := NewService(input.SenderRepo, input.EventBus, input.Logger)
				if err != nil {
					return ModuleOutput{}, err
				}

				// 启动期执行所有者引导（配置未携带owner时为无操作）
				registryCfg := registryconfig.NewFromOptions(input.Provider.GetRegistry())
				input.Lifecycle.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return BootstrapOwner(ctx, service, registryCfg, input.Logger)
					},
				})

				return ModuleOutput{
					ConfigStore: service,
				}, nil
			},
		),
	)
}

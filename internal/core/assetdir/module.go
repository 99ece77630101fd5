package assetdir

import (
	"go.uber.org/fx"

	registryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/config"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/registry"
)

// ModuleInput 资产目录模块输入依赖
type ModuleInput struct {
	fx.In

	Provider config.Provider // 配置提供者
	Logger   log.Logger      `optional:"true"` // 日志记录器（可选）
}

// ModuleOutput 资产目录模块输出
type ModuleOutput struct {
	fx.Out

	AssetDirectory registry.AssetDirectory // 资产目录服务
}

// Module 返回资产目录模块的fx配置
func Module() fx.Option {
	return fx.Module("assetdir",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				registryCfg := registryconfig.NewFromOptions(input.Provider.GetRegistry())

				directory, err := New(registryCfg)
				if err != nil {
					return ModuleOutput{}, err
				}

				if input.Logger != nil {
					input.Logger.Infof("资产目录已初始化 - nativeMint: %s", directory.NativeMint())
				}

				return ModuleOutput{
					AssetDirectory: directory,
				}, nil
			},
		),
	)
}

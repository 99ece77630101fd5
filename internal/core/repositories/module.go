package repositories

import (
	"go.uber.org/fx"

	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/repository"
)

// ModuleInput 数据仓储模块输入依赖
type ModuleInput struct {
	fx.In

	// 基础设施组件
	Logger log.Logger `optional:"true"` // 日志记录器（可选）

	// 存储组件
	BadgerStore storage.BadgerStore // 权威存储
}

// ModuleOutput 数据仓储模块输出
type ModuleOutput struct {
	fx.Out

	// 数据仓储服务
	TokenRepository        repository.TokenRepository
	SenderConfigRepository repository.SenderConfigRepository
}

// Module 返回数据仓储模块的fx配置
func Module() fx.Option {
	return fx.Module("repositories",
		fx.Provide(
			// 使用工厂函数创建所有仓储服务
			func(input ModuleInput) (ModuleOutput, error) {
				serviceInput := ServiceInput{
					Logger:      input.Logger,
					BadgerStore: input.BadgerStore,
				}

				serviceOutput, err := CreateAllServices(serviceInput)
				if err != nil {
					return ModuleOutput{}, err
				}

				return ModuleOutput{
					TokenRepository:        serviceOutput.TokenRepository,
					SenderConfigRepository: serviceOutput.SenderConfigRepository,
				}, nil
			},
		),

		fx.Invoke(
			func(logger log.Logger) {
				if logger != nil {
					logger.Info("数据仓储模块已加载")
				}
			},
		),
	)
}

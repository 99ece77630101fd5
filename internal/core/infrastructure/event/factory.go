package event

import (
	"context"
	"fmt"

	eventconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/config"
	eventInterface "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"

	"go.uber.org/fx"
)

// ServiceInput 事件服务工厂函数的输入参数
type ServiceInput struct {
	Provider  config.Provider // 配置提供者
	Logger    log.Logger      // 日志记录器（可选）
	Lifecycle fx.Lifecycle    // 生命周期管理
}

// ServiceOutput 事件服务工厂函数的输出结果
type ServiceOutput struct {
	EventBus eventInterface.EventBus // 事件总线
}

// CreateEventServices 创建事件服务
func CreateEventServices(input ServiceInput) (ServiceOutput, error) {
	// 获取事件配置选项
	eventOptions := input.Provider.GetEvent()

	// 创建事件配置
	eventCfg := eventconfig.NewFromOptions(eventOptions)

	// 初始化事件总线
	eventBus := New(eventCfg)

	// 注册表事件默认开启历史记录，供新接入的WebSocket客户端回放
	for _, eventType := range []eventInterface.EventType{
		eventInterface.EventTypeTokenRegistered,
		eventInterface.EventTypeOwnerInitialized,
	} {
		if err := eventBus.EnableEventHistory(eventType, eventCfg.GetMaxEventHistory()); err != nil {
			return ServiceOutput{}, fmt.Errorf("启用事件历史失败: %w", err)
		}
	}

	// 关闭前排空异步订阅者，避免丢失已发布的事件
	input.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			eventBus.WaitAsync()
			if input.Logger != nil {
				if eb, ok := eventBus.(*EventBus); ok {
					input.Logger.Infof("事件总线已排空 (累计发布 %d 条事件)", eb.PublishedCount())
				}
			}
			return nil
		},
	})

	// 记录日志
	if input.Logger != nil {
		input.Logger.Info("事件总线已初始化")
	}

	return ServiceOutput{
		EventBus: eventBus,
	}, nil
}

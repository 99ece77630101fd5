package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/deltaswapio/token-bridge-relayer/internal/api"
	config "github.com/deltaswapio/token-bridge-relayer/internal/config"
	"github.com/deltaswapio/token-bridge-relayer/internal/core/assetdir"
	"github.com/deltaswapio/token-bridge-relayer/internal/core/configstore"
	"github.com/deltaswapio/token-bridge-relayer/internal/core/infrastructure/event"
	log "github.com/deltaswapio/token-bridge-relayer/internal/core/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/internal/core/infrastructure/storage"
	"github.com/deltaswapio/token-bridge-relayer/internal/core/registry"
	"github.com/deltaswapio/token-bridge-relayer/internal/core/repositories"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{
		opts: opts,
	}
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		config.Module(), // 1. 配置(不依赖其他)
		log.Module(),    // 2. 日志(依赖配置)
	}
}

// SetupCommunicationLayer 设置通信与数据层模块
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),   // 事件总线(依赖配置和日志)
		storage.Module(), // 存储引擎(依赖配置和日志)
	}
}

// SetupBusinessLayer 设置业务逻辑层模块
// 加载顺序遵循模块间的依赖关系，从底层数据访问到上层注册服务
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		// 第一层：数据访问
		repositories.Module(), // 1. 存储仓库（实现pkg/interfaces/repository）

		// 第二层：领域支撑服务
		configstore.Module(), // 2. 所有者配置（含启动期自举钩子）
		assetdir.Module(),    // 3. 原生资产目录

		// 第三层：注册核心
		registry.Module(), // 4. 代币注册服务（依赖以上全部）
	}
}

// SetupApplicationLayer 设置应用层模块
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	// 应用层模块(依赖所有其他层)
	modules := []fx.Option{
		AppModule, // 应用核心模块
	}

	// 条件性添加API模块
	if b.opts.enableAPI {
		modules = append(modules, api.Module())
		fmt.Println("🌐 API模块已启用")
	} else {
		fmt.Println("⚠️  API模块已禁用")
	}

	return modules
}

// SetupModules 设置所有应用模块
func (b *Bootstrap) SetupModules() ([]fx.Option, error) {
	var allModules []fx.Option

	// 按照依赖顺序添加各层模块
	allModules = append(allModules, b.SetupInfrastructureLayer()...)
	allModules = append(allModules, b.SetupCommunicationLayer()...)
	allModules = append(allModules, b.SetupBusinessLayer()...)
	allModules = append(allModules, b.SetupApplicationLayer()...)

	return allModules, nil
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	modules, err := b.SetupModules()
	if err != nil {
		return err
	}

	appOptions := []fx.Option{
		// 加载所有模块
		fx.Options(modules...),

		// 禁用fx内部日志
		fx.NopLogger,

		// 生命周期钩子
		fx.Invoke(func(lifecycle fx.Lifecycle) {
			lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					fmt.Println("准备启动应用")
					return nil
				},
				OnStop: func(ctx context.Context) error {
					fmt.Println("准备停止应用")
					return nil
				},
			})
		}),
	}

	b.fxApp = fx.New(appOptions...)
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	fmt.Println("正在启动应用...")

	if err := b.fxApp.Start(ctx); err != nil {
		fmt.Printf("启动失败: %v\n", err)
		return fmt.Errorf("启动应用失败: %w", err)
	}

	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	fmt.Println("正在停止应用...")

	if err := b.fxApp.Stop(ctx); err != nil {
		fmt.Printf("停止失败: %v\n", err)
		return fmt.Errorf("停止应用失败: %w", err)
	}

	return nil
}

// BootstrapApp 执行完整的引导过程并返回应用实例
func BootstrapApp(options ...Option) (App, error) {
	opts := newOptions(options...)

	bootstrap := NewBootstrap(opts)

	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	// 启动应用 - 使用有超时的启动Context
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer startupCancel()

	if err := bootstrap.StartApp(startupCtx); err != nil {
		return nil, err
	}

	app := &internalApp{
		fxApp:     bootstrap.fxApp,
		bootstrap: bootstrap,
	}

	return app, nil
}

// WaitForSignal 等待退出信号
func WaitForSignal() os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	return <-signals
}

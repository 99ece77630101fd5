package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/config"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
	"github.com/deltaswapio/token-bridge-relayer/pkg/utils"
)

// AppModule 应用模块定义
var AppModule = fx.Options(
	// 提供应用配置选项，供config模块使用
	fx.Provide(ProvideAppOptions),
)

// ProvideAppOptions 提供应用配置选项实例
// 这个函数为依赖注入系统提供config.AppOptions接口的实现
func ProvideAppOptions(lifecycle fx.Lifecycle) config.AppOptions {
	fmt.Println("🔧 开始加载应用配置...")

	appOptions := loadConfig()

	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			fmt.Println("✅ 应用配置选项已初始化")
			return nil
		},
	})

	return appOptions
}

// 🔧 零值陷阱处理说明：
// 配置文件字段全部采用指针类型，以区分"用户未设置"和"用户设置为零值"：
// - nil: 用户未在配置文件中设置该字段，使用系统默认值
// - &value: 用户明确设置了该值，即使是零值（如0、false、""）也会被采用
//
// 示例：
// "cache_enabled": false → 用户明确关闭读缓存
// 省略"cache_enabled"字段 → 使用系统默认值（启用）

// loadConfig 加载应用配置
// 优先级：内嵌配置 > 配置文件（自定义路径/环境变量/默认路径）> 系统默认值
func loadConfig() config.AppOptions {
	defaultOptions := newOptions()

	// 内嵌配置优先（编译期打包，无需外部文件）
	if len(globalEmbeddedConfig) > 0 {
		var appConfig types.AppConfig
		if err := json.Unmarshal(globalEmbeddedConfig, &appConfig); err != nil {
			fmt.Printf("解析内嵌配置失败: %v，使用默认配置\n", err)
			return defaultOptions
		}
		fmt.Println("已加载内嵌配置")
		defaultOptions.appConfig = &appConfig
		ensureDataDirectories(defaultOptions)
		return defaultOptions
	}

	configPath := getConfigFilePath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("配置文件 %s 不存在，使用默认配置\n", configPath)
		return defaultOptions
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Printf("读取配置文件失败: %v，使用默认配置\n", err)
		return defaultOptions
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		fmt.Printf("解析配置文件失败: %v，使用默认配置\n", err)
		return defaultOptions
	}

	fmt.Printf("已成功加载配置文件: %s\n", configPath)
	defaultOptions.appConfig = &appConfig

	ensureDataDirectories(defaultOptions)

	return defaultOptions
}

// ensureDataDirectories 根据配置预创建数据目录结构
// 创建失败不阻断启动，存储模块打开数据库时会给出权威错误
func ensureDataDirectories(opts config.AppOptions) {
	appConfig := opts.GetAppConfig()
	if appConfig == nil {
		return
	}

	var directories []string

	// 1. 实例数据目录：{data_root}/{environment}，不同环境的数据相互隔离
	dataRoot := "./data"
	if appConfig.Storage != nil && appConfig.Storage.DataRoot != nil {
		dataRoot = *appConfig.Storage.DataRoot
	}
	instanceDir := utils.ResolveDataPath(filepath.Join(dataRoot, string(appConfig.GetEnvironment())))
	directories = append(directories, instanceDir)

	// 2. 日志目录
	if appConfig.Log != nil && appConfig.Log.FilePath != nil {
		logDir := filepath.Dir(*appConfig.Log.FilePath)
		directories = append(directories, logDir)
	}

	for _, dir := range directories {
		if dir == "" {
			continue
		}

		if err := utils.EnsureDir(dir); err != nil {
			fmt.Printf("⚠️  创建目录 %s 失败: %v\n", dir, err)
			continue
		}

		fmt.Printf("📁 目录已就绪: %s\n", dir)
	}
}

// App 是中继注册服务的对外接口
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 等待应用收到退出信号
	Wait()
}

// internalApp 应用的内部实现
type internalApp struct {
	fxApp     *fx.App
	bootstrap *Bootstrap
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	fmt.Println("🛑 停止应用...")

	// 停止fx应用（包括所有生命周期钩子）
	// 超时放宽到60秒，确保数据库有足够时间完成同步和关闭
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待应用收到退出信号
func (a *internalApp) Wait() {
	fmt.Println("🔄 应用正在运行，按 Ctrl+C 停止...")

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signals
	fmt.Printf("\n🛑 收到信号 %v，正在优雅退出...\n", sig)

	if err := a.Stop(); err != nil {
		fmt.Printf("⚠️ 停止应用时出错: %v\n", err)
	}
}

// Start 启动中继注册服务
func Start(appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)

	// 如果指定了配置文件路径或内嵌配置，设置全局变量供配置加载使用
	if opts.configFilePath != "" {
		SetConfigFilePath(opts.configFilePath)
	}
	if len(opts.embeddedConfig) > 0 {
		SetEmbeddedConfig(opts.embeddedConfig)
	}

	return BootstrapApp(appOptions...)
}

// 全局配置来源（在fx装配前由启动入口设置）
var (
	globalConfigPath     string
	globalEmbeddedConfig []byte
)

// SetConfigFilePath 设置全局配置文件路径
func SetConfigFilePath(path string) {
	globalConfigPath = path
}

// SetEmbeddedConfig 设置内嵌配置内容（优先级高于配置文件）
func SetEmbeddedConfig(configBytes []byte) {
	globalEmbeddedConfig = configBytes
}

// getConfigFilePath 获取配置文件路径
func getConfigFilePath() string {
	// 1. 优先使用环境变量 TBR_CONFIG_PATH
	if envPath := os.Getenv("TBR_CONFIG_PATH"); envPath != "" {
		return envPath
	}

	// 2. 其次使用全局变量（通过SetConfigFilePath设置）
	if globalConfigPath != "" {
		return globalConfigPath
	}

	// 3. 最后使用默认配置路径
	return "configs/development.json"
}

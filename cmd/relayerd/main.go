package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/deltaswapio/token-bridge-relayer/configs"
	"github.com/deltaswapio/token-bridge-relayer/internal/app"
	"github.com/deltaswapio/token-bridge-relayer/internal/app/version"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
	runtimeutil "github.com/deltaswapio/token-bridge-relayer/pkg/utils/runtime"
)

func main() {
	// 添加 panic recovery，确保任何 panic 都能被捕获
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n❌ [PANIC] 程序发生严重错误: %v\n", r)
			fmt.Fprintf(os.Stderr, "请检查配置和依赖是否正确\n")
			os.Exit(1)
		}
	}()

	var (
		profile     string // 内嵌配置档位：development | testing | production
		configPath  string // 用户配置文件路径（优先于内嵌配置）
		httpPort    int    // HTTP端口（进程级覆盖）
		dataDir     string // 数据目录（进程级覆盖）
		ownerKey    string // 所有者公钥（进程级覆盖，启动期自举用）
		showHelp    bool   // 显示帮助
		showVersion bool   // 显示版本
	)

	flag.StringVar(&profile, "profile", "development", "内嵌配置档位：development | testing | production")
	flag.StringVar(&configPath, "config", "", "配置文件路径（指定后忽略 --profile）")
	flag.IntVar(&httpPort, "http-port", 0, "HTTP端口（覆盖配置中的 http_port）")
	flag.StringVar(&dataDir, "data-dir", "", "数据目录（覆盖配置中的 data_root）")
	flag.StringVar(&ownerKey, "owner", "", "所有者公钥base58（覆盖配置中的 registry.owner，用于启动期自举）")
	flag.BoolVar(&showHelp, "help", false, "显示帮助信息")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.Parse()

	if showVersion {
		fmt.Println(version.GetFullVersion())
		return
	}

	if showHelp {
		showHelpInfo()
		return
	}

	fmt.Println("🚀 relayerd 启动中...")

	// 加载配置：用户配置文件优先，否则使用内嵌档位
	var configData []byte
	var configSource string

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			fmt.Printf("❌ 读取配置文件失败: %v\n", err)
			os.Exit(1)
		}
		configData = data
		configSource = configPath
	} else {
		switch strings.ToLower(profile) {
		case "development":
			configData = configs.GetDevelopmentConfig()
		case "testing":
			configData = configs.GetTestingConfig()
		case "production":
			configData = configs.GetProductionConfig()
		default:
			fmt.Printf("❌ 错误: 无效的配置档位 '%s'\n", profile)
			fmt.Println("💡 有效选项: development | testing | production")
			os.Exit(1)
		}
		configSource = fmt.Sprintf("内嵌配置（%s）", strings.ToLower(profile))
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(configData, &appConfig); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 解析配置文件失败: %v\n", err)
		os.Exit(1)
	}

	// 验证 environment 字段
	if appConfig.Environment == nil || *appConfig.Environment == "" {
		fmt.Println("❌ 错误: 配置缺少 environment 字段")
		fmt.Println("💡 请在配置文件中添加 environment 字段（dev | test | prod）")
		os.Exit(1)
	}
	envValue := strings.ToLower(*appConfig.Environment)
	if envValue != "dev" && envValue != "test" && envValue != "prod" {
		fmt.Printf("❌ 错误: 配置中的 environment 字段值无效: %s\n", *appConfig.Environment)
		fmt.Println("💡 有效选项: dev | test | prod")
		os.Exit(1)
	}

	// 应用进程级覆盖（端口、数据目录、所有者）
	applyOverrides(&appConfig, httpPort, dataDir, ownerKey)

	// 验证配置
	if err := validateConfig(&appConfig); err != nil {
		fmt.Printf("❌ 配置验证失败: %v\n", err)
		os.Exit(1)
	}

	// 重新序列化为JSON（作为内嵌配置传入应用）
	finalConfigData, err := json.Marshal(&appConfig)
	if err != nil {
		fmt.Printf("❌ 序列化配置失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("   运行环境: %s\n", *appConfig.Environment)
	fmt.Printf("   配置来源: %s\n", configSource)

	// ✅ 容器内存上限自动感知：避免 Go 堆无限增长后被 cgroup OOM killer 直接杀死
	if applied, limit, err := runtimeutil.ApplyCgroupMemoryLimit(0.80); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  [MEMLIMIT] 自动设置 GOMEMLIMIT 失败: %v\n", err)
	} else if applied {
		fmt.Printf("✅ [MEMLIMIT] 已自动应用 cgroup 内存上限: limit=%d bytes (ratio=0.80)\n", limit)
	}

	relayerApp, err := app.Start(
		app.WithEmbeddedConfig(finalConfigData),
		app.WithAPI(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 服务启动失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ 服务启动成功！")

	// 等待退出信号
	relayerApp.Wait()
}

// applyOverrides 应用进程级覆盖配置
func applyOverrides(appConfig *types.AppConfig, httpPort int, dataDir, ownerKey string) {
	if httpPort > 0 {
		if appConfig.API == nil {
			appConfig.API = &types.UserAPIConfig{}
		}
		appConfig.API.HTTPPort = &httpPort
	}

	if dataDir != "" {
		if appConfig.Storage == nil {
			appConfig.Storage = &types.UserStorageConfig{}
		}
		appConfig.Storage.DataRoot = &dataDir
	}

	if ownerKey != "" {
		if appConfig.Registry == nil {
			appConfig.Registry = &types.UserRegistryConfig{}
		}
		appConfig.Registry.Owner = &ownerKey
	}
}

// validateConfig 验证配置
// 地址类字段必须能通过base58解析，启动后才不会在首个请求上暴雷
func validateConfig(appConfig *types.AppConfig) error {
	if appConfig.Registry != nil {
		if appConfig.Registry.Owner != nil && *appConfig.Registry.Owner != "" {
			if _, err := types.ParsePrincipal(*appConfig.Registry.Owner); err != nil {
				return fmt.Errorf("registry.owner 不是有效的base58公钥: %w", err)
			}
		}
		if appConfig.Registry.NativeMint != nil && *appConfig.Registry.NativeMint != "" {
			if _, err := types.ParseMintAddress(*appConfig.Registry.NativeMint); err != nil {
				return fmt.Errorf("registry.native_mint 不是有效的base58地址: %w", err)
			}
		}
	}

	if appConfig.API != nil && appConfig.API.HTTPPort != nil {
		if *appConfig.API.HTTPPort < 1 || *appConfig.API.HTTPPort > 65535 {
			return fmt.Errorf("api.http_port 超出有效范围: %d", *appConfig.API.HTTPPort)
		}
	}

	return nil
}

// showHelpInfo 显示帮助信息
func showHelpInfo() {
	fmt.Println("relayerd - 代币桥接中继注册服务")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  relayerd [选项]")
	fmt.Println()
	fmt.Println("配置来源（二选一）:")
	fmt.Println("  --profile <name>    内嵌配置档位：development（默认）| testing | production")
	fmt.Println("  --config <path>     配置文件路径（指定后忽略 --profile）")
	fmt.Println()
	fmt.Println("进程级覆盖（可选）:")
	fmt.Println("  --http-port <port>  HTTP端口（覆盖配置中的 http_port）")
	fmt.Println("  --data-dir <path>   数据目录（覆盖配置中的 data_root）")
	fmt.Println("  --owner <base58>    所有者公钥（覆盖配置中的 registry.owner，用于启动期自举）")
	fmt.Println()
	fmt.Println("其他选项:")
	fmt.Println("  --help              显示此帮助信息")
	fmt.Println("  --version           显示版本信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 开发环境（0 配置）")
	fmt.Println("  relayerd")
	fmt.Println()
	fmt.Println("  # 开发环境（指定端口与所有者）")
	fmt.Println("  relayerd --http-port 18080 --owner 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	fmt.Println()
	fmt.Println("  # 生产环境（内嵌生产档位 + 外部数据目录）")
	fmt.Println("  relayerd --profile production --data-dir /var/lib/relayerd")
	fmt.Println()
	fmt.Println("  # 自定义配置文件")
	fmt.Println("  relayerd --config ./my-relayer.json")
	fmt.Println()
}

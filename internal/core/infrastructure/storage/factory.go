// Package storage 提供存储服务工厂实现
package storage

import (
	"fmt"
	"path/filepath"

	badgerconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/badger"
	memoryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/memory"
	"github.com/deltaswapio/token-bridge-relayer/internal/core/infrastructure/storage/badger"
	"github.com/deltaswapio/token-bridge-relayer/internal/core/infrastructure/storage/memory"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/config"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
)

// ServiceInput 定义存储服务工厂的输入参数
type ServiceInput struct {
	Provider config.Provider // 配置提供者
	Logger   log.Logger      // 日志记录器
}

// ServiceOutput 定义存储服务工厂的输出结果
type ServiceOutput struct {
	BadgerStore storageInterface.BadgerStore
	MemoryStore storageInterface.MemoryStore
}

// CreateStorageServices 创建存储服务
//
// 🏭 **存储服务工厂**：
// 该函数负责创建存储模块的所有服务，处理各存储引擎的初始化。
// 将存储初始化逻辑从module.go中分离出来，保持module.go的薄实现。
//
// 注册表的存储分两层：
//   - BadgerDB：权威存储，初始化失败直接报错
//   - 内存缓存：读路径加速，初始化失败只降级不阻断
func CreateStorageServices(input ServiceInput) (ServiceOutput, error) {
	provider := input.Provider
	logger := input.Logger

	// 为存储模块添加 module 字段，便于日志过滤
	var storageLogger log.Logger
	if logger != nil {
		storageLogger = logger.With("module", "storage")
	}

	// 获取各存储配置（均基于 Provider 提供的实例数据目录 instance_data_dir 构建）
	badgerOptions := provider.GetBadger()
	memoryOptions := provider.GetMemory()

	// 创建配置对象
	badgerCfg := badgerconfig.NewFromOptions(badgerOptions)
	memoryCfg := memoryconfig.NewFromOptions(memoryOptions)

	// 初始化BadgerDB存储（必需）
	badgerStore := badger.New(badgerCfg, storageLogger)
	if badgerStore == nil {
		if storageLogger != nil {
			storageLogger.Error("BadgerDB存储初始化失败")
		}
		return ServiceOutput{}, fmt.Errorf("存储初始化失败：BadgerDB存储不可用")
	}

	// 显示实际使用的数据路径，并转换为绝对路径
	actualPath := badgerOptions.Path
	if actualPath == "" {
		// 理论上 Provider 总会提供基于 instance_data_dir 的路径，这里只是最后的兜底
		actualPath = "./data/badger"
	}

	absPath, err := filepath.Abs(actualPath)
	if err != nil {
		if storageLogger != nil {
			storageLogger.Warnf("无法转换为绝对路径 %s: %v，使用原路径", actualPath, err)
		}
		absPath = actualPath
	}

	if storageLogger != nil {
		storageLogger.Infof("✅ BadgerDB存储初始化成功")
		storageLogger.Infof("📁 注册表数据路径: %s", absPath)
		if absPath != actualPath {
			storageLogger.Infof("   (配置路径: %s)", actualPath)
		}
	}

	// 初始化内存缓存（可降级）
	memoryStore := memory.New(memoryCfg, storageLogger)
	if memoryStore == nil {
		if storageLogger != nil {
			storageLogger.Warn("内存缓存初始化失败，注册表读路径将全部回源BadgerDB")
		}
		// 缓存失败不阻止启动，注册表语义不依赖缓存
	} else {
		if storageLogger != nil {
			storageLogger.Info("✅ 内存缓存初始化成功")
		}
	}

	if storageLogger != nil {
		storageLogger.Info("🎯 存储模块所有服务初始化完成")
	}

	return ServiceOutput{
		BadgerStore: badgerStore,
		MemoryStore: memoryStore,
	}, nil
}

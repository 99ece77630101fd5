// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/api"
	eventconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/event"
	logconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/log"
	registryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/registry"
	badgerconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/badger"
	memoryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/memory"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// Provider 配置提供者接口
type Provider interface {
	// === 核心配置 ===

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetEvent 获取事件配置
	GetEvent() *eventconfig.EventOptions

	// GetRegistry 获取注册表配置
	GetRegistry() *registryconfig.RegistryOptions

	// === 环境配置 ===

	// GetEnvironment 获取运行环境
	// 返回运行环境字符串：dev | test | prod
	// 未配置时默认为 "dev"
	GetEnvironment() string

	// GetInstanceDataDir 获取实例的数据目录
	// 返回实例专属的数据目录路径，用于隔离不同环境的数据
	// 路径格式：{data_root}/{environment}
	GetInstanceDataDir() string

	// === 存储引擎配置 ===

	// GetBadger 获取BadgerDB存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetMemory 获取内存存储配置
	GetMemory() *memoryconfig.MemoryOptions

	// === 原始配置访问 ===

	// GetAppConfig 获取原始应用配置（用于验证等场景）
	GetAppConfig() *types.AppConfig
}

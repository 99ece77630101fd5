package config

import (
	"path/filepath"

	"github.com/deltaswapio/token-bridge-relayer/internal/config/api"
	"github.com/deltaswapio/token-bridge-relayer/internal/config/event"
	"github.com/deltaswapio/token-bridge-relayer/internal/config/log"
	"github.com/deltaswapio/token-bridge-relayer/internal/config/registry"
	"github.com/deltaswapio/token-bridge-relayer/internal/config/storage/badger"
	"github.com/deltaswapio/token-bridge-relayer/internal/config/storage/memory"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/config"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
	"github.com/deltaswapio/token-bridge-relayer/pkg/utils"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	return &Provider{
		appConfig: appConfig,
	}
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	// 直接传递用户API配置给api.New，让它处理默认值和转换
	var userAPIConfig *types.UserAPIConfig
	if p.appConfig != nil && p.appConfig.API != nil {
		userAPIConfig = p.appConfig.API
	}

	// api.New会处理默认值应用和用户配置覆盖
	return api.New(userAPIConfig).GetOptions()
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	// 直接传递用户日志配置给log.New，让它处理默认值和转换
	var userLogConfig *types.UserLogConfig
	if p.appConfig != nil && p.appConfig.Log != nil {
		userLogConfig = p.appConfig.Log
	}

	// log.New会处理默认值应用和用户配置覆盖
	return log.New(userLogConfig).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *event.EventOptions {
	var userEventConfig *types.UserEventConfig
	if p.appConfig != nil && p.appConfig.Event != nil {
		userEventConfig = p.appConfig.Event
	}

	return event.New(userEventConfig).GetOptions()
}

// GetRegistry 获取注册表配置
func (p *Provider) GetRegistry() *registry.RegistryOptions {
	var userRegistryConfig *types.UserRegistryConfig
	if p.appConfig != nil && p.appConfig.Registry != nil {
		userRegistryConfig = p.appConfig.Registry
	}

	return registry.New(userRegistryConfig).GetOptions()
}

// === 环境配置方法 ===

// GetEnvironment 获取运行环境
func (p *Provider) GetEnvironment() string {
	if p.appConfig != nil {
		return string(p.appConfig.GetEnvironment())
	}
	return string(types.EnvDev)
}

// GetInstanceDataDir 获取实例的数据目录
//
// 路径格式：{data_root}/{environment}
// 不同环境的数据完全隔离，避免dev数据污染生产库。
func (p *Provider) GetInstanceDataDir() string {
	dataRoot := "./data"
	if p.appConfig != nil && p.appConfig.Storage != nil && p.appConfig.Storage.DataRoot != nil {
		dataRoot = *p.appConfig.Storage.DataRoot
	}

	return utils.ResolveDataPath(filepath.Join(dataRoot, p.GetEnvironment()))
}

// === 存储引擎配置方法 ===

// GetBadger 获取BadgerDB存储配置
func (p *Provider) GetBadger() *badger.BadgerOptions {
	// 基于实例数据目录构建存储配置，保证不同环境的数据相互隔离
	instanceDir := p.GetInstanceDataDir()
	storageConfig := &types.UserStorageConfig{DataRoot: &instanceDir}

	// badger.New会处理默认值应用和用户配置覆盖
	return badger.New(storageConfig).GetOptions()
}

// GetMemory 获取内存存储配置
func (p *Provider) GetMemory() *memory.MemoryOptions {
	return memory.New(nil).GetOptions()
}

// === 原始配置访问 ===

// GetAppConfig 获取原始应用配置（用于验证等场景）
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}

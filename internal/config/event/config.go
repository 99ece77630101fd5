package event

import (
	"time"

	configtypes "github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// EventOptions 事件系统配置选项
// 专注于基础设施核心功能的简化配置
type EventOptions struct {
	// === 基础配置 ===
	Enabled    bool `json:"enabled"`     // 是否启用事件系统
	BufferSize int  `json:"buffer_size"` // 事件缓冲区大小
	MaxWorkers int  `json:"max_workers"` // 最大工作者数量

	// === 基础限制 ===
	MaxSubscribers  int `json:"max_subscribers"`   // 最大订阅者数量
	MaxEventHistory int `json:"max_event_history"` // 每种事件的历史记录上限

	// === 行为配置 ===
	DefaultAsync bool          `json:"default_async"` // 默认是否异步分发
	EventTimeout time.Duration `json:"event_timeout"` // 单个事件处理超时
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置实现
func New(userConfig interface{}) *Config {
	// 1. 先创建完整的默认配置
	defaultOptions := createDefaultEventOptions()

	// 2. 如果有用户配置，应用用户配置覆盖默认值
	if userConfig != nil {
		applyUserEventConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// createDefaultEventOptions 创建默认事件配置
func createDefaultEventOptions() *EventOptions {
	return &EventOptions{
		// 基础配置
		Enabled:    defaultEnabled,
		BufferSize: defaultBufferSize,
		MaxWorkers: defaultMaxWorkers,

		// 基础限制
		MaxSubscribers:  defaultMaxSubscribers,
		MaxEventHistory: defaultMaxEventHistory,

		// 行为配置
		DefaultAsync: defaultDefaultAsync,
		EventTimeout: defaultEventTimeout,
	}
}

// NewFromOptions 从已解析的EventOptions创建配置实现
// options为nil时回退到默认配置
func NewFromOptions(options *EventOptions) *Config {
	if options == nil {
		options = createDefaultEventOptions()
	}
	return &Config{
		options: options,
	}
}

// applyUserEventConfig 应用用户事件配置覆盖默认值
func applyUserEventConfig(options *EventOptions, userConfig interface{}) {
	if eventConfig, ok := userConfig.(*configtypes.UserEventConfig); ok && eventConfig != nil {
		// 只处理JSON配置文件中实际出现的字段
		if eventConfig.Enabled != nil {
			options.Enabled = *eventConfig.Enabled
		}
		if eventConfig.MaxEventHistory != nil {
			options.MaxEventHistory = *eventConfig.MaxEventHistory
		}
	}
}

// GetOptions 获取完整的事件配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// === 基础配置访问方法 ===

// IsEnabled 是否启用事件系统
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// GetBufferSize 获取事件缓冲区大小
func (c *Config) GetBufferSize() int {
	return c.options.BufferSize
}

// GetMaxWorkers 获取最大工作者数量
func (c *Config) GetMaxWorkers() int {
	return c.options.MaxWorkers
}

// GetMaxSubscribers 获取最大订阅者数量
func (c *Config) GetMaxSubscribers() int {
	return c.options.MaxSubscribers
}

// GetMaxEventHistory 获取事件历史记录上限
func (c *Config) GetMaxEventHistory() int {
	return c.options.MaxEventHistory
}

// IsDefaultAsync 默认是否异步分发
func (c *Config) IsDefaultAsync() bool {
	return c.options.DefaultAsync
}

// GetEventTimeout 获取单个事件处理超时
func (c *Config) GetEventTimeout() time.Duration {
	return c.options.EventTimeout
}

// ToBusConfig 转换为事件总线运行时配置
func (c *Config) ToBusConfig() *configtypes.EventBusConfig {
	return &configtypes.EventBusConfig{
		MaxEventHistory: c.options.MaxEventHistory,
		DefaultAsync:    c.options.DefaultAsync,
		EventTimeout:    c.options.EventTimeout,
		EnableMetrics:   false,
	}
}

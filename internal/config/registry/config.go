package registry

import (
	"time"

	configtypes "github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// RegistryOptions 注册表配置选项
// 专注于注册核心与读路径的简化配置
type RegistryOptions struct {
	// === 资产目录配置 ===
	NativeMint string `json:"native_mint"` // 原生资产的Mint地址（base58）

	// === 所有者引导配置 ===
	Owner string `json:"owner"` // 启动期一次性初始化的所有者主体（base58，可为空）

	// === 读路径缓存配置 ===
	CacheEnabled bool          `json:"cache_enabled"` // 是否启用读路径缓存
	CacheTTL     time.Duration `json:"cache_ttl"`     // 缓存条目TTL

	// === 写路径配置 ===
	TxnMaxRetries int `json:"txn_max_retries"` // 事务冲突的最大重试次数
}

// Config 注册表配置实现
type Config struct {
	options *RegistryOptions
}

// New 创建注册表配置实现
func New(userConfig interface{}) *Config {
	// 1. 先创建完整的默认配置
	defaultOptions := createDefaultRegistryOptions()

	// 2. 如果有用户配置，应用用户配置覆盖默认值
	if userConfig != nil {
		applyUserRegistryConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// createDefaultRegistryOptions 创建默认注册表配置
func createDefaultRegistryOptions() *RegistryOptions {
	return &RegistryOptions{
		NativeMint:    defaultNativeMint,
		Owner:         "", // 默认不做启动期引导
		CacheEnabled:  defaultCacheEnabled,
		CacheTTL:      defaultCacheTTL,
		TxnMaxRetries: defaultTxnMaxRetries,
	}
}

// NewFromOptions 从已解析的RegistryOptions创建配置实现
// options为nil时回退到默认配置
func NewFromOptions(options *RegistryOptions) *Config {
	if options == nil {
		options = createDefaultRegistryOptions()
	}
	return &Config{
		options: options,
	}
}

// applyUserRegistryConfig 应用用户注册表配置覆盖默认值
func applyUserRegistryConfig(options *RegistryOptions, userConfig interface{}) {
	if registryConfig, ok := userConfig.(*configtypes.UserRegistryConfig); ok && registryConfig != nil {
		// 只处理JSON配置文件中实际出现的字段
		if registryConfig.NativeMint != nil {
			options.NativeMint = *registryConfig.NativeMint
		}
		if registryConfig.Owner != nil {
			options.Owner = *registryConfig.Owner
		}
		if registryConfig.CacheEnabled != nil {
			options.CacheEnabled = *registryConfig.CacheEnabled
		}
		if registryConfig.CacheTTL != nil {
			// 无法解析的TTL字符串保持默认值
			if ttl, err := time.ParseDuration(*registryConfig.CacheTTL); err == nil && ttl > 0 {
				options.CacheTTL = ttl
			}
		}
		if registryConfig.TxnMaxRetries != nil && *registryConfig.TxnMaxRetries > 0 {
			options.TxnMaxRetries = *registryConfig.TxnMaxRetries
		}
	}
}

// GetOptions 获取完整的注册表配置选项
func (c *Config) GetOptions() *RegistryOptions {
	return c.options
}

// === 基础配置访问方法 ===

// GetNativeMint 获取原生资产的Mint地址（base58）
func (c *Config) GetNativeMint() string {
	return c.options.NativeMint
}

// GetOwner 获取启动期引导的所有者主体（base58，可为空）
func (c *Config) GetOwner() string {
	return c.options.Owner
}

// IsCacheEnabled 是否启用读路径缓存
func (c *Config) IsCacheEnabled() bool {
	return c.options.CacheEnabled
}

// GetCacheTTL 获取缓存条目TTL
func (c *Config) GetCacheTTL() time.Duration {
	return c.options.CacheTTL
}

// GetTxnMaxRetries 获取事务冲突的最大重试次数
func (c *Config) GetTxnMaxRetries() int {
	return c.options.TxnMaxRetries
}

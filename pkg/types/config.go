// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	Version *string `json:"version,omitempty"`  // 应用版本

	// Environment 运行环境：dev | test | prod
	// 只影响日志级别、默认端口等运维属性
	Environment *string `json:"environment,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`

	// 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 事件总线配置
	Event *UserEventConfig `json:"event,omitempty"`

	// 注册表配置 - 对应配置文件中的 registry 字段
	Registry *UserRegistryConfig `json:"registry,omitempty"`
}

// UserAPIConfig 用户API配置
// 只包含JSON配置文件中实际出现的字段
type UserAPIConfig struct {
	HTTPEnabled *bool   `json:"http_enabled,omitempty"` // 是否启用HTTP服务（默认true）
	HTTPHost    *string `json:"http_host,omitempty"`    // HTTP监听地址
	HTTPPort    *int    `json:"http_port,omitempty"`    // HTTP监听端口

	// HTTP 协议细粒度开关
	HTTPEnableWebSocket *bool `json:"http_enable_websocket,omitempty"` // 是否启用WebSocket事件推送（默认true）

	// HTTP CORS 配置
	HTTPCorsEnabled *bool    `json:"http_cors_enabled,omitempty"` // 是否启用CORS（默认false，管理面默认本机访问）
	HTTPCorsOrigins []string `json:"http_cors_origins,omitempty"` // 允许的CORS源
}

// UserStorageConfig 用户存储配置
// 只包含JSON配置文件中实际出现的字段。
// 实际数据目录由 data_root + Environment 组合得到。
type UserStorageConfig struct {
	DataRoot *string `json:"data_root,omitempty"` // 数据根目录
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserEventConfig 用户事件总线配置
type UserEventConfig struct {
	Enabled         *bool `json:"enabled,omitempty"`           // 是否启用事件总线（默认true）
	MaxEventHistory *int  `json:"max_event_history,omitempty"` // 每种事件类型保留的历史记录上限
}

// UserRegistryConfig 用户注册表配置
// 对应配置文件中的 registry 字段
type UserRegistryConfig struct {
	// NativeMint 原生资产的Mint地址（base58）
	// 默认为wrapped SOL，一般无需配置
	NativeMint *string `json:"native_mint,omitempty"`

	// Owner 所有者公钥（base58）
	// 配置后启动时自动完成一次性初始化；所有者配置已存在时忽略。
	// 注册核心自身永远不写所有者配置。
	Owner *string `json:"owner,omitempty"`

	// CacheEnabled 是否启用只读路径的内存缓存（默认true）
	CacheEnabled *bool `json:"cache_enabled,omitempty"`

	// CacheTTL 缓存条目生命周期（如"10m"）
	// 注册记录不可变，TTL只用于控制内存占用
	CacheTTL *string `json:"cache_ttl,omitempty"`

	// TxnMaxRetries 注册事务冲突时的最大重试次数
	TxnMaxRetries *int `json:"txn_max_retries,omitempty"`
}

// Environment 运行环境
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvTest Environment = "test"
	EnvProd Environment = "prod"
)

// GetEnvironment 返回运行环境
func (c *AppConfig) GetEnvironment() Environment {
	if c.Environment == nil || *c.Environment == "" {
		return EnvDev // 默认 dev
	}
	return Environment(*c.Environment)
}

// 配置辅助函数
// 这些函数帮助创建指针类型的配置值，区分"未设置"和"设置为零值"

// BoolPtr 创建bool指针，用于明确表示用户设置了该值
func BoolPtr(v bool) *bool {
	return &v
}

// IntPtr 创建int指针，用于明确表示用户设置了该值
func IntPtr(v int) *int {
	return &v
}

// StringPtr 创建string指针，用于明确表示用户设置了该值
func StringPtr(v string) *string {
	return &v
}

// UInt64Ptr 创建uint64指针，用于明确表示用户设置了该值
func UInt64Ptr(v uint64) *uint64 {
	return &v
}

package api

import (
	"time"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// APIOptions API服务配置选项
// 整个API模块的统一配置入口，包含所有API服务的配置
type APIOptions struct {
	// HTTP API配置
	HTTP HTTPConfig `json:"http"`

	// WebSocket配置（复用HTTP监听端口，仅控制升级行为）
	WebSocket WebSocketConfig `json:"websocket"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	// 基础配置
	Enabled bool   `json:"enabled"` // 是否启用HTTP服务（总开关）
	Host    string `json:"host"`    // 监听地址
	Port    int    `json:"port"`    // 监听端口

	// 协议细粒度开关
	EnableWebSocket bool `json:"enable_websocket"` // 是否启用WebSocket（/api/v1/registry/events/ws）

	// 超时配置
	Timeout      time.Duration `json:"timeout"`       // 请求超时时间
	ReadTimeout  time.Duration `json:"read_timeout"`  // 读取超时时间
	WriteTimeout time.Duration `json:"write_timeout"` // 写入超时时间

	// CORS配置
	CORSEnabled bool     `json:"cors_enabled"` // 是否启用CORS
	CORSOrigins []string `json:"cors_origins"` // 允许的CORS源

	// 限流和安全
	MaxRequestSize int `json:"max_request_size"` // 最大请求大小(字节)
}

// WebSocketConfig WebSocket配置
// WebSocket端点挂载在HTTP服务上，这里只配置升级与连接参数
type WebSocketConfig struct {
	// 连接限制
	MaxConnections int `json:"max_connections"` // 最大连接数

	// 缓冲区配置
	ReadBufferSize  int `json:"read_buffer_size"`  // 读缓冲区大小(字节)
	WriteBufferSize int `json:"write_buffer_size"` // 写缓冲区大小(字节)
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置实现
func New(userConfig *types.UserAPIConfig) *Config {
	// 1. 先创建完整的默认配置
	defaultOptions := createDefaultAPIOptions()

	// 2. 如果有用户配置，则转换并覆盖默认配置
	if userConfig != nil {
		convertAndMergeUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// createDefaultAPIOptions 创建默认API配置
func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		HTTP: HTTPConfig{
			Enabled:         defaultHTTPEnabled,
			Host:            defaultHTTPHost,
			Port:            defaultHTTPPort,
			EnableWebSocket: defaultHTTPEnableWebSocket,
			Timeout:         defaultHTTPTimeout,
			ReadTimeout:     defaultHTTPReadTimeout,
			WriteTimeout:    defaultHTTPWriteTimeout,
			CORSEnabled:     defaultCORSEnabled,
			CORSOrigins:     append([]string{}, defaultCORSOrigins...), // 复制切片
			MaxRequestSize:  defaultMaxRequestSize,
		},
		WebSocket: WebSocketConfig{
			MaxConnections:  defaultWebSocketMaxConnections,
			ReadBufferSize:  defaultWebSocketReadBufferSize,
			WriteBufferSize: defaultWebSocketWriteBufferSize,
		},
	}
}

// convertAndMergeUserConfig 将用户配置转换并合并到默认配置中
// 使用指针类型来准确区分"未设置"和"设置为零值"
func convertAndMergeUserConfig(defaultOpts *APIOptions, userConfig *types.UserAPIConfig) {
	// === HTTP API配置 ===

	// HTTPEnabled: 指针类型，用户未设置时为nil，设置为false时为&false
	if userConfig.HTTPEnabled != nil {
		// 用户明确设置了HTTP API开关（无论true还是false都是用户的明确意图）
		defaultOpts.HTTP.Enabled = *userConfig.HTTPEnabled
	}
	// 如果userConfig.HTTPEnabled == nil，表示用户未设置，保持默认值

	// HTTPHost: 指针类型，用户未设置时保持默认的回环地址
	if userConfig.HTTPHost != nil {
		defaultOpts.HTTP.Host = *userConfig.HTTPHost
	}

	// HTTPPort: 指针类型，用户未设置时为nil，设置为0时为&0
	if userConfig.HTTPPort != nil {
		// 用户明确设置了HTTP端口
		defaultOpts.HTTP.Port = *userConfig.HTTPPort
	}
	// 如果userConfig.HTTPPort == nil，表示用户未设置，保持默认值

	// 协议细粒度开关
	if userConfig.HTTPEnableWebSocket != nil {
		defaultOpts.HTTP.EnableWebSocket = *userConfig.HTTPEnableWebSocket
	}

	// CORS 配置
	if userConfig.HTTPCorsEnabled != nil {
		defaultOpts.HTTP.CORSEnabled = *userConfig.HTTPCorsEnabled
	}
	if len(userConfig.HTTPCorsOrigins) > 0 {
		defaultOpts.HTTP.CORSOrigins = userConfig.HTTPCorsOrigins
	}
}

// GetOptions 获取完整的API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}

// GetHTTPConfig 获取HTTP配置
func (c *Config) GetHTTPConfig() *HTTPConfig {
	return &c.options.HTTP
}

// GetWebSocketConfig 获取WebSocket配置
func (c *Config) GetWebSocketConfig() *WebSocketConfig {
	return &c.options.WebSocket
}

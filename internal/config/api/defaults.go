package api

import "time"

// API服务默认配置值
// 这些默认值基于生产环境的最佳实践和常见API服务配置
const (
	// === HTTP API配置 ===

	// defaultHTTPEnabled 默认启用HTTP API
	// 原因：HTTP API是注册表的唯一对外接口，CLI也通过它工作
	defaultHTTPEnabled = true

	// defaultHTTPHost HTTP监听地址设为127.0.0.1
	// 原因：调用方身份取自受信任的请求头，服务默认只监听回环地址
	// 对外暴露时应由部署层的反向代理完成边界认证
	defaultHTTPHost = "127.0.0.1"

	// defaultHTTPPort HTTP端口设为8080
	// 原因：8080是常用的HTTP替代端口，避免与系统端口冲突
	// 不需要root权限，便于开发和部署
	defaultHTTPPort = 8080

	// defaultHTTPEnableWebSocket 默认启用WebSocket端点
	// 原因：注册事件的实时推送依赖WebSocket，默认开启便于联调
	defaultHTTPEnableWebSocket = true

	// defaultHTTPTimeout HTTP超时时间设为30秒
	// 原因：给注册事务的有限次重试留出处理时间，同时避免长时间占用连接
	defaultHTTPTimeout = 30 * time.Second

	// defaultHTTPReadTimeout HTTP读取超时设为15秒
	// 原因：防止慢客户端占用连接，确保服务器响应性
	defaultHTTPReadTimeout = 15 * time.Second

	// defaultHTTPWriteTimeout HTTP写入超时设为15秒
	// 原因：防止慢客户端影响响应写入，保证服务器性能
	defaultHTTPWriteTimeout = 15 * time.Second

	// defaultMaxRequestSize 最大请求大小设为1MB
	// 原因：注册请求体很小，1MB的上限同时防止内存滥用
	defaultMaxRequestSize = 1 * 1024 * 1024

	// defaultCORSEnabled 默认启用CORS
	// 原因：运营面板等Web前端需要跨域访问查询接口
	defaultCORSEnabled = true

	// === WebSocket配置 ===

	// defaultWebSocketMaxConnections WebSocket最大连接数设为100
	// 原因：限制并发连接，防止资源耗尽
	// 100个连接足以支持中等规模的实时应用
	defaultWebSocketMaxConnections = 100

	// defaultWebSocketReadBufferSize WebSocket读缓冲区设为1024字节
	// 原因：足以处理常见的实时消息，节省内存
	defaultWebSocketReadBufferSize = 1024

	// defaultWebSocketWriteBufferSize WebSocket写缓冲区设为1024字节
	// 原因：与读缓冲区保持一致，优化内存使用
	defaultWebSocketWriteBufferSize = 1024
)

// defaultCORSOrigins 默认CORS允许源列表
// 开发环境允许所有源，生产环境应限制为特定域名
var defaultCORSOrigins = []string{
	"*", // 允许所有源，生产环境建议替换为具体域名
}

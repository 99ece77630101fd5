package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/deltaswapio/token-bridge-relayer/internal/api/http/handlers"
	"github.com/deltaswapio/token-bridge-relayer/internal/api/http/middleware"
	"github.com/deltaswapio/token-bridge-relayer/internal/api/websocket"
	apiconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/api"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/config"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	registryiface "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/registry"
)

// 限流默认档位：查询类请求宽松、写入类请求收紧。
// 注册是低频管理操作，10次/秒/IP已远超正常使用。
const (
	defaultReadRateLimit  = 100
	defaultWriteRateLimit = 10
)

// Server HTTP服务器结构
// 负责提供代币注册表的HTTP API服务
// 包含路由管理、中间件链、服务启动和停止等功能
type Server struct {
	router      *gin.Engine                  // Gin路由引擎，处理HTTP请求和路由分发
	httpServer  *http.Server                 // 标准HTTP服务器，提供HTTP监听功能
	config      config.Provider              // 配置提供者，用于获取API配置
	logger      log.Logger                   // 日志记录器，用于记录服务器运行状态
	registry    registryiface.TokenRegistry  // 注册表核心服务，提供注册与查询
	configStore registryiface.ConfigStore    // 所有者配置存储
	assets      registryiface.AssetDirectory // 资产目录，区分原生/非原生Mint
	cache       storage.MemoryStore          // 内存缓存（降级模式下为nil）
	eventBus    event.EventBus               // 事件总线（未启用时为nil）
	wsServer    *websocket.Server            // WebSocket事件推送服务
}

// NewServer 创建新的HTTP服务器
// 该函数在fx框架的依赖注入系统中注册，会自动接收所需依赖
// 并负责服务器的初始化和生命周期管理
// 参数:
//   - lifecycle: fx生命周期管理器，用于注册服务启动和停止钩子
//   - config: 全局配置对象，包含API配置信息
//   - logger: 日志接口，用于记录服务器日志
//   - registry: 注册表核心服务，提供代币注册与查询
//   - configStore: 所有者配置存储，提供所有者读取与引导
//   - assets: 资产目录，用于原生Mint判定
//   - cache: 内存缓存，仅用于健康上报（可为nil）
//   - eventBus: 事件总线，驱动WebSocket事件推送（可为nil）
//
// 返回:
//   - 初始化完成的HTTP服务器实例
func NewServer(
	lifecycle fx.Lifecycle,
	config config.Provider,
	logger log.Logger,
	registry registryiface.TokenRegistry,
	configStore registryiface.ConfigStore,
	assets registryiface.AssetDirectory,
	cache storage.MemoryStore,
	eventBus event.EventBus,
) *Server {
	// 根据环境模式配置Gin（必须在创建路由引擎之前设置）
	if os.Getenv("TBR_CLI_MODE") == "true" {
		// CLI模式下设置为Release模式，减少调试输出
		gin.SetMode(gin.ReleaseMode)
		// 重定向GIN的默认输出到空设备，抑制控制台输出
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
	}

	router := gin.New()

	// 创建服务器实例，保存所有依赖
	server := &Server{
		router:      router,
		config:      config,
		logger:      logger,
		registry:    registry,
		configStore: configStore,
		assets:      assets,
		cache:       cache,
		eventBus:    eventBus,
	}

	// WebSocket服务挂载在HTTP监听端口上，升级参数取自API配置
	if apiOptions := config.GetAPI(); apiOptions != nil {
		server.wsServer = websocket.NewServer(logger, eventBus, &apiOptions.WebSocket)
	}

	// 注册服务生命周期钩子
	// 当fx启动时，会调用OnStart方法启动HTTP服务
	// 当fx停止时，会调用OnStop方法停止HTTP服务
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})

	// 初始化中间件链与路由，设置所有API端点
	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware 装配HTTP中间件链
//
// 注册顺序决定执行顺序：
//  1. 请求ID（最先，后续所有环节依赖它做关联）
//  2. 访问日志与指标（观测完整生命周期，含错误翻译后的最终状态码）
//  3. 请求体大小限制
//  4. CORS（按配置启用）
//  5. 限流（读写分档）
//  6. 错误翻译（领域错误 -> Problem Details）
//  7. Recovery（最内层，panic就地转500，外层观测中间件仍可记录）
func (s *Server) setupMiddleware() {
	var httpCfg apiconfig.HTTPConfig
	if apiOptions := s.config.GetAPI(); apiOptions != nil {
		httpCfg = apiOptions.HTTP
	}

	s.router.Use(middleware.NewRequestID().Middleware())
	s.router.Use(middleware.NewLogger(s.logger).Middleware())
	s.router.Use(middleware.NewMetrics().Middleware())

	if httpCfg.MaxRequestSize > 0 {
		maxBytes := int64(httpCfg.MaxRequestSize)
		s.router.Use(func(c *gin.Context) {
			// 超限时body读取返回错误，由绑定阶段转为400
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
			c.Next()
		})
	}

	if httpCfg.CORSEnabled {
		s.router.Use(middleware.NewCORS(httpCfg.CORSOrigins).Middleware())
	}

	s.router.Use(middleware.NewRateLimit(defaultReadRateLimit, defaultWriteRateLimit).Middleware())
	s.router.Use(middleware.ErrorHandler(s.logger))
	s.router.Use(gin.Recovery())
}

// setupRoutes 设置HTTP路由
// 该方法配置所有API端点和它们的处理函数
// 包括注册表、健康检查、指标和WebSocket推送
func (s *Server) setupRoutes() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("[PANIC] setupRoutes发生异常: %v", r)
		}
	}()

	s.logger.Info("开始设置HTTP路由...")

	// 健康检查端点挂载在根路径，供负载均衡与Kubernetes探针使用
	healthHandler := handlers.NewHealthHandler(s.logger, s.registry, s.configStore, s.cache, s.eventBus)
	healthHandler.RegisterRoutes(&s.router.RouterGroup)

	// Prometheus指标端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 创建API版本前缀，所有API端点都在/api/v1路径下
	// 这样便于将来版本升级和兼容性管理
	v1 := s.router.Group("/api/v1")

	// 注册表路由：代币注册、查询与所有者管理
	registryHandler := handlers.NewRegistryHandler(s.registry, s.configStore, s.assets, s.logger)
	registryHandler.RegisterRoutes(v1)
	s.logger.Info("注册表路由注册完成")

	// WebSocket事件推送端点（按配置启用）
	wsEnabled := false
	if apiOptions := s.config.GetAPI(); apiOptions != nil {
		wsEnabled = apiOptions.HTTP.EnableWebSocket
	}
	if wsEnabled && s.wsServer != nil {
		v1.GET("/registry/events/ws", s.wsServer.HandleWebSocket)
		s.logger.Info("WebSocket事件推送路由注册完成")
	}

	s.logger.Info("所有API路由已注册完成")
}

// Start 启动HTTP服务器
// 从配置中读取服务器设置，启动监听过程
// 启动过程在后台goroutine中进行，不会阻塞主线程
// 返回:
//   - 如果启动失败，返回错误；否则返回nil
func (s *Server) Start() error {
	// 读取配置或使用默认值
	var port int
	var host string
	readTimeout := 15 * time.Second
	writeTimeout := 15 * time.Second

	// 检查配置中的HTTP API设置
	// 如果API已启用，读取配置的主机和端口
	apiOptions := s.config.GetAPI()
	if apiOptions != nil && apiOptions.HTTP.Enabled {
		port = apiOptions.HTTP.Port
		host = apiOptions.HTTP.Host
		if apiOptions.HTTP.ReadTimeout > 0 {
			readTimeout = apiOptions.HTTP.ReadTimeout
		}
		if apiOptions.HTTP.WriteTimeout > 0 {
			writeTimeout = apiOptions.HTTP.WriteTimeout
		}
		s.logger.Infof("使用配置的HTTP设置: %s:%d", host, port)
	} else {
		s.logger.Info("HTTP API在配置中被禁用，使用默认值")
	}

	// 如果配置中没有指定或值无效，使用默认值
	if port == 0 {
		port = 8080
	}
	if host == "" {
		// 默认仅监听回环地址，对外暴露由部署层决定
		host = "127.0.0.1"
	}

	// 端口占用检测和处理
	finalPort, err := s.handlePortConflict(host, port)
	if err != nil {
		return fmt.Errorf("端口处理失败: %w", err)
	}

	// 格式化服务器地址字符串
	addr := fmt.Sprintf("%s:%d", host, finalPort)
	s.logger.Infof("准备启动HTTP服务器，配置地址: %s", addr)

	// 创建标准HTTP服务器
	s.httpServer = &http.Server{
		Addr:         addr,     // 服务器监听地址和端口
		Handler:      s.router, // 使用gin路由作为请求处理器
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second, // 空闲连接超时
	}

	// 启动协程管理监听循环
	s.startGoroutine(addr)

	// 增强启动验证，确保服务器真正监听端口
	if err := s.waitForServerReady(addr, 3*time.Second); err != nil {
		s.logger.Errorf("HTTP服务器启动验证失败: %v", err)
		return fmt.Errorf("HTTP服务器启动验证失败: %w", err)
	}

	s.logger.Infof("✅ HTTP服务器启动成功，监听地址: %s", addr)
	s.logger.Infof("📡 API端点: http://%s/api/v1/registry/", addr)
	s.logger.Infof("🩺 健康检查: http://%s/health", addr)
	if apiOptions != nil && apiOptions.HTTP.EnableWebSocket {
		s.logger.Infof("🔌 事件推送: ws://%s/api/v1/registry/events/ws", addr)
	}

	return nil
}

// handlePortConflict 处理端口冲突
func (s *Server) handlePortConflict(host string, port int) (int, error) {
	s.logger.Infof("检查端口可用性: %s:%d", host, port)

	// 检查端口是否可用
	if s.isPortAvailable(host, port) {
		s.logger.Infof("端口 %d 可用", port)
		return port, nil
	}

	s.logger.Warnf("⚠️ 端口 %d 被占用，自动寻找可用端口", port)

	// 如果端口被占用，尝试寻找可用端口（不强制终止其他进程）
	newPort, err := s.findAvailablePort(host, port)
	if err != nil {
		return 0, fmt.Errorf("无法找到可用端口: %w", err)
	}

	s.logger.Warnf("🔄 端口已自动漂移: %d -> %d (可能有其他中继实例正在运行)", port, newPort)
	return newPort, nil
}

// isPortAvailable 检查端口是否可用
func (s *Server) isPortAvailable(host string, port int) bool {
	addr := fmt.Sprintf("%s:%d", host, port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// findAvailablePort 寻找可用端口
func (s *Server) findAvailablePort(host string, startPort int) (int, error) {
	s.logger.Infof("寻找可用端口，起始端口: %d", startPort)

	// 在起始端口附近寻找可用端口
	for i := 0; i < 100; i++ {
		candidatePort := startPort + i
		if candidatePort > 65535 {
			break
		}

		if s.isPortAvailable(host, candidatePort) {
			s.logger.Infof("找到可用端口: %d", candidatePort)
			return candidatePort, nil
		}
	}

	// 如果向上寻找失败，向下寻找
	for i := 1; i < 100; i++ {
		candidatePort := startPort - i
		if candidatePort < 1024 { // 避免使用系统保留端口
			break
		}

		if s.isPortAvailable(host, candidatePort) {
			s.logger.Infof("找到可用端口: %d", candidatePort)
			return candidatePort, nil
		}
	}

	return 0, fmt.Errorf("在端口范围内未找到可用端口")
}

// Stop 停止HTTP服务器
// 优雅地关闭服务器，等待所有请求处理完成
// 参数:
//   - ctx: 上下文，用于控制关闭超时
//
// 返回:
//   - 如果关闭失败，返回错误；否则返回nil
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("正在关闭HTTP服务器")

	if s.httpServer == nil {
		return nil
	}

	// 创建带超时的上下文，防止关闭过程卡住
	// 5秒后如果服务器还未完全关闭，将强制关闭
	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Shutdown会等待所有活跃连接完成，然后关闭服务器
	// 如果超过停止上下文的超时时间，将返回错误
	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}

	s.logger.Info("HTTP服务器已关闭")
	return nil
}

// startGoroutine 启动监听协程
func (s *Server) startGoroutine(addr string) {
	go func() {
		s.logger.Infof("HTTP服务器启动协程开始, 地址: %s", addr)

		// ListenAndServe会阻塞直到服务器关闭
		// 正常关闭时会返回http.ErrServerClosed，不应视为错误
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("❌ HTTP服务器运行失败: %v", err)
		} else {
			s.logger.Info("✅ HTTP服务器正常关闭")
		}
	}()
}

// waitForServerReady 等待服务器就绪
func (s *Server) waitForServerReady(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			s.logger.Infof("✅ HTTP服务器端口检测成功: %s", addr)
			return nil
		}

		// 等待一小段时间再重试
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("超时等待服务器启动: %s", addr)
}

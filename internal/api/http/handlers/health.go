package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	registryiface "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/registry"
)

// HealthHandler 健康检查端点处理器
//
// 🏥 **Kubernetes风格健康检查**
//
// 提供三层健康检查端点：
// - /health: 完整健康报告（所有组件状态）
// - /health/live: 存活检查（进程是否响应）
// - /health/ready: 就绪检查（是否可对外服务）
//
// 实现细节：
// - 通过所有者配置的读路径探测BadgerDB存储
// - 通过注册核心的枚举接口统计注册记录
// - 内存缓存与事件总线按可选依赖上报（未注入时标记disabled）
type HealthHandler struct {
	logger      log.Logger
	startTime   time.Time
	registry    registryiface.TokenRegistry
	configStore registryiface.ConfigStore
	cache       storage.MemoryStore // 降级模式下为nil
	eventBus    event.EventBus      // 未注入时为nil
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(
	logger log.Logger,
	registry registryiface.TokenRegistry,
	configStore registryiface.ConfigStore,
	cache storage.MemoryStore,
	eventBus event.EventBus,
) *HealthHandler {
	return &HealthHandler{
		logger:      logger,
		startTime:   time.Now(),
		registry:    registry,
		configStore: configStore,
		cache:       cache,
		eventBus:    eventBus,
	}
}

// RegisterRoutes 注册健康检查路由
//
// 注册三个健康检查端点：
// - GET /health: 完整健康报告
// - GET /health/live: Kubernetes liveness probe
// - GET /health/ready: Kubernetes readiness probe
func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("", h.GetHealth)          // 完整健康报告
		health.GET("/live", h.GetLiveness)   // 存活检查
		health.GET("/ready", h.GetReadiness) // 就绪检查
	}
}

// GetHealth 获取完整健康状态
//
// GET /health
//
// 返回完整的健康报告，包括：
// - 整体状态（healthy/degraded/unhealthy）
// - 各组件状态（存储、注册表、缓存、事件总线）
// - 所有者配置的初始化状态
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()
	uptime := time.Since(h.startTime)

	// 检查各组件状态
	components := make(map[string]interface{})
	overallHealthy := true

	// 1. 检查底层存储（经由所有者配置的读路径）
	storageStatus := h.checkStorage(ctx)
	components["storage"] = storageStatus
	if status, ok := storageStatus["status"].(string); ok && status != "healthy" {
		overallHealthy = false
	}

	// 2. 检查注册核心
	registryStatus := h.checkRegistry(ctx)
	components["registry"] = registryStatus
	if status, ok := registryStatus["status"].(string); ok && status != "healthy" {
		overallHealthy = false
	}

	// 3. 检查内存缓存（disabled不拉低整体状态）
	components["cache"] = h.checkCache(ctx)

	// 4. 检查事件总线（disabled不拉低整体状态）
	components["eventbus"] = h.checkEventBus()

	// 确定整体状态
	overallStatus := "healthy"
	if !overallHealthy {
		overallStatus = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     overallStatus,
		"liveness":   "ok",
		"readiness":  h.determineReadiness(components),
		"version":    "v1.0.0",
		"timestamp":  time.Now().Format(time.RFC3339),
		"uptime":     uptime.String(),
		"components": components,
	})
}

// GetLiveness 存活检查（Kubernetes Liveness Probe）
//
// GET /health/live
//
// 仅检查进程是否响应，不检查业务状态。
// 失败时 Kubernetes 将重启 Pod。
//
// 实现细节：
// - 检查进程是否能响应（能执行到这里就表示存活）
// - 不检查依赖服务（避免因依赖故障导致重启）
// - 总是返回 200 OK（除非进程死锁）
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	// 简单响应表示进程存活
	// 如果能执行到这里，说明进程没有死锁或崩溃
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GetReadiness 就绪检查（Kubernetes Readiness Probe）
//
// GET /health/ready
//
// 检查服务是否可受理注册请求。
// 失败时 Kubernetes 将从 Service 中移除 Pod。
//
// 实现细节：
// - 检查存储读路径可用
// - 检查所有者配置已初始化（未引导的部署无法受理注册）
//
// 返回：
// - 200 OK：服务就绪
// - 503 Service Unavailable：服务未就绪
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	ctx := c.Request.Context()

	// 执行所有就绪检查
	checks := make(map[string]bool)

	// 1. 检查存储读路径
	checks["storage"] = h.isStorageReady(ctx)

	// 2. 检查所有者配置
	checks["owner_initialized"] = h.isOwnerInitialized(ctx)

	// 判断是否全部就绪
	allReady := true
	for _, ready := range checks {
		if !ready {
			allReady = false
			break
		}
	}

	if allReady {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"checks":    checks,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	} else {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"checks":    checks,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// checkStorage 检查底层存储状态
//
// 实现细节：
// - 经由所有者配置的读路径探测BadgerDB
// - 配置未初始化不算存储故障（记录缺失但读路径畅通）
// - 测量延迟
func (h *HealthHandler) checkStorage(ctx context.Context) map[string]interface{} {
	start := time.Now()

	if h.configStore == nil {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  "config store not available",
		}
	}

	_, err := h.configStore.GetOwner(ctx)
	latency := time.Since(start)

	if err != nil && !errors.Is(err, types.ErrSenderConfigNotInitialized) {
		if h.logger != nil {
			h.logger.Warnf("存储健康检查失败: %v", err)
		}
		return map[string]interface{}{
			"status":     "unhealthy",
			"latency_ms": latency.Milliseconds(),
			"error":      err.Error(),
		}
	}

	return map[string]interface{}{
		"status":            "healthy",
		"latency_ms":        latency.Milliseconds(),
		"owner_initialized": err == nil,
	}
}

// checkRegistry 检查注册核心状态
//
// 实现细节：
// - 调用枚举接口验证查询路径
// - 返回注册记录总数
func (h *HealthHandler) checkRegistry(ctx context.Context) map[string]interface{} {
	if h.registry == nil {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  "token registry not available",
		}
	}

	entries, err := h.registry.ListTokens(ctx)
	if err != nil {
		if h.logger != nil {
			h.logger.Warnf("注册核心健康检查失败: %v", err)
		}
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	}

	return map[string]interface{}{
		"status": "healthy",
		"tokens": len(entries),
	}
}

// checkCache 检查内存缓存状态
//
// 缓存是可选加速层，未注入（降级模式）时标记disabled，
// 不拉低整体健康状态。
func (h *HealthHandler) checkCache(ctx context.Context) map[string]interface{} {
	if h.cache == nil {
		return map[string]interface{}{
			"status": "disabled",
		}
	}

	count, err := h.cache.Count(ctx)
	if err != nil {
		return map[string]interface{}{
			"status": "degraded",
			"error":  err.Error(),
		}
	}

	return map[string]interface{}{
		"status":  "healthy",
		"entries": count,
	}
}

// checkEventBus 检查事件总线状态
func (h *HealthHandler) checkEventBus() map[string]interface{} {
	if h.eventBus == nil {
		return map[string]interface{}{
			"status": "disabled",
		}
	}

	return map[string]interface{}{
		"status": "healthy",
	}
}

// determineReadiness 根据组件状态确定就绪状态
//
// 实现细节：
// - 检查所有组件是否健康（disabled视为正常）
// - 返回 "ready" 或 "not_ready"
func (h *HealthHandler) determineReadiness(components map[string]interface{}) string {
	for _, component := range components {
		if comp, ok := component.(map[string]interface{}); ok {
			if status, ok := comp["status"].(string); ok {
				if status == "unhealthy" {
					return "not_ready"
				}
			}
		}
	}
	return "ready"
}

// isStorageReady 检查存储读路径是否可用
func (h *HealthHandler) isStorageReady(ctx context.Context) bool {
	if h.configStore == nil {
		return false
	}

	_, err := h.configStore.GetOwner(ctx)
	return err == nil || errors.Is(err, types.ErrSenderConfigNotInitialized)
}

// isOwnerInitialized 检查所有者配置是否已初始化
func (h *HealthHandler) isOwnerInitialized(ctx context.Context) bool {
	if h.configStore == nil {
		return false
	}

	_, err := h.configStore.GetOwner(ctx)
	return err == nil
}

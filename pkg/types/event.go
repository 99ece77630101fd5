// Package types provides event type definitions.
package types

import (
	"time"
)

// EventType 事件类型标识
type EventType string

// SubscriptionID 订阅标识
type SubscriptionID string

// SubscriptionInfo 订阅信息
type SubscriptionInfo struct {
	ID            SubscriptionID `json:"id"`                       // 订阅ID
	EventType     EventType      `json:"event_type"`               // 事件类型
	Handler       interface{}    `json:"-"`                        // 处理函数（不序列化）
	CreatedAt     time.Time      `json:"created_at"`               // 创建时间
	LastTriggered *time.Time     `json:"last_triggered,omitempty"` // 最后触发时间
	TriggerCount  uint64         `json:"trigger_count"`            // 触发计数
	IsActive      bool           `json:"is_active"`                // 是否激活
}

// EventBusConfig 事件总线运行时配置
type EventBusConfig struct {
	MaxEventHistory int           `json:"max_event_history"` // 每种事件类型保留的历史记录上限
	DefaultAsync    bool          `json:"default_async"`     // 默认异步分发
	EventTimeout    time.Duration `json:"event_timeout"`     // 事件处理超时
	EnableMetrics   bool          `json:"enable_metrics"`    // 启用指标统计
}

// ==================== 注册表事件数据结构 ====================

// TokenRegisteredEventData 代币注册成功事件数据
//
// 注册操作提交后发布，供下游消费者（费用引擎、监控、WebSocket推送）订阅。
type TokenRegisteredEventData struct {
	Mint                string    `json:"mint"`                   // Mint地址（base58）
	SwapRate            uint64    `json:"swap_rate"`              // 兑换汇率
	MaxNativeSwapAmount uint64    `json:"max_native_swap_amount"` // 最大原生币兑换额度
	RequestID           string    `json:"request_id,omitempty"`   // 触发来源的请求ID
	Timestamp           time.Time `json:"timestamp"`              // 事件时间
}

// OwnerInitializedEventData 所有者配置初始化事件数据
type OwnerInitializedEventData struct {
	Owner     string    `json:"owner"`     // 所有者公钥（base58）
	Timestamp time.Time `json:"timestamp"` // 事件时间
}

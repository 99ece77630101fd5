// Package event 提供中继器的事件总线接口定义
//
// 🎯 **事件总线系统 (Event Bus System)**
//
// 本文件定义了中继器的事件总线接口，支持：
// - 标准事件订阅和发布
// - 异步事件处理
// - 事件历史记录
package event

import (
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// 兼容别名
type EventType = types.EventType

// Event 事件接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Data 返回事件数据
	Data() interface{}
}

// EventBus 事件总线接口
//
// 🎯 **注册表事件总线**：
// - 注册成功等业务事件的进程内广播
// - WebSocket推送等订阅方通过本接口挂载
// - 支持异步处理与历史回放
type EventBus interface {
	// 注意：事件总线由DI容器自动管理生命周期

	// Subscribe 订阅事件
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅事件
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// SubscribeOnce 一次性订阅事件
	SubscribeOnce(eventType EventType, handler interface{}) error
	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})
	// PublishEvent 发布Event接口类型事件
	PublishEvent(event Event)
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error
	// WaitAsync 等待所有异步处理完成
	WaitAsync()
	// HasCallback 检查是否有回调函数
	HasCallback(eventType EventType) bool
	// GetEventHistory 获取指定事件类型的历史记录
	// 如果历史功能未启用或没有历史记录，返回nil
	GetEventHistory(eventType EventType) []interface{}
	// EnableEventHistory 启用事件历史记录
	EnableEventHistory(eventType EventType, maxSize int) error
	// DisableEventHistory 禁用事件历史记录
	DisableEventHistory(eventType EventType) error
	// GetConfig 获取当前配置
	GetConfig() (*types.EventBusConfig, error)
}

// ==================== 数据结构别名 ====================

// 兼容别名：将已迁移到 pkg/types 的数据结构在本包中提供别名，避免大范围改动
type SubscriptionID = types.SubscriptionID
type SubscriptionInfo = types.SubscriptionInfo
type EventBusConfig = types.EventBusConfig

// ==================== 预定义事件类型 ====================

const (
	// 系统事件
	EventTypeSystemStartup  EventType = "system.startup"
	EventTypeSystemShutdown EventType = "system.shutdown"
	EventTypeSystemError    EventType = "system.error"

	// 注册表事件
	EventTypeTokenRegistered  EventType = "registry.token.registered"  // 代币注册成功
	EventTypeOwnerInitialized EventType = "registry.owner.initialized" // 所有者配置初始化完成
)

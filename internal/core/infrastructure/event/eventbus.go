// 基于asaskevich/EventBus的事件总线实现
// 提供配置门控、按类型的事件历史回放与基础统计

package event

import (
	"sync"
	"sync/atomic"
	"time"

	evbus "github.com/asaskevich/EventBus"
	eventconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// EventBus 是基于asaskevich/EventBus的实现
//
// 🎯 **注册表事件总线特性**：
// - 保持与底层asaskevich/EventBus的完全兼容
// - 配置门控：事件系统禁用时所有操作静默成功
// - 按事件类型的历史缓冲，新接入的WebSocket客户端可回放最近的注册事件
// - 内置发布计数统计
type EventBus struct {
	// ================== 基础组件 ==================
	bus    evbus.Bus           // 底层事件总线
	config *eventconfig.Config // 配置

	// ================== 历史记录 ==================
	historyMu     sync.RWMutex                      // 历史记录锁
	eventHistory  map[event.EventType][]interface{} // 历史事件存储（从旧到新）
	historyLimits map[event.EventType]int           // 每种事件类型的容量上限

	// ================== 指标统计 ==================
	metrics *eventMetrics // 事件指标
}

// 编译期接口断言
var _ event.EventBus = (*EventBus)(nil)

// eventMetrics 简化的事件指标
type eventMetrics struct {
	publishedEvents atomic.Uint64 // 发布总数
	trimmedHistory  atomic.Uint64 // 因容量上限被淘汰的历史条数

	measurementStart time.Time
}

// New 创建事件总线实例
// 所有事件总线实例必须通过此函数创建，确保配置被正确应用
func New(config *eventconfig.Config) event.EventBus {
	return &EventBus{
		bus:           evbus.New(),
		config:        config,
		eventHistory:  make(map[event.EventType][]interface{}),
		historyLimits: make(map[event.EventType]int),
		metrics:       newEventMetrics(),
	}
}

// newEventMetrics 创建新的事件指标
func newEventMetrics() *eventMetrics {
	return &eventMetrics{
		measurementStart: time.Now(),
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil // 如果事件系统未启用，静默成功
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// SubscribeOnce 实现一次性订阅
func (eb *EventBus) SubscribeOnce(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeOnce(string(eventType), handler)
}

// Publish 实现发布
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if !eb.config.IsEnabled() {
		return
	}

	eb.saveEventToHistory(eventType, args)
	eb.metrics.publishedEvents.Add(1)

	eb.bus.Publish(string(eventType), args...)
}

// PublishEvent 发布Event接口类型事件
func (eb *EventBus) PublishEvent(e event.Event) {
	eb.Publish(e.Type(), e.Data())
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	if !eb.config.IsEnabled() {
		return
	}
	eb.bus.WaitAsync()
}

// HasCallback 检查是否有回调
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	if !eb.config.IsEnabled() {
		return false
	}
	return eb.bus.HasCallback(string(eventType))
}

// ==================== 历史记录 ====================

// EnableEventHistory 启用事件历史记录
// maxSize <= 0 时使用配置的默认上限
func (eb *EventBus) EnableEventHistory(eventType event.EventType, maxSize int) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	if maxSize <= 0 {
		maxSize = eb.config.GetMaxEventHistory()
	}

	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	eb.historyLimits[eventType] = maxSize

	// 收紧上限时裁掉最旧的部分
	if history := eb.eventHistory[eventType]; len(history) > maxSize {
		eb.eventHistory[eventType] = append([]interface{}(nil), history[len(history)-maxSize:]...)
	}

	return nil
}

// DisableEventHistory 禁用事件历史记录并清空已有记录
func (eb *EventBus) DisableEventHistory(eventType event.EventType) error {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	delete(eb.historyLimits, eventType)
	delete(eb.eventHistory, eventType)

	return nil
}

// GetEventHistory 获取指定类型的事件历史（从旧到新）
// 返回副本；历史未启用或没有记录时返回nil
func (eb *EventBus) GetEventHistory(eventType event.EventType) []interface{} {
	eb.historyMu.RLock()
	defer eb.historyMu.RUnlock()

	history := eb.eventHistory[eventType]
	if len(history) == 0 {
		return nil
	}
	return append([]interface{}(nil), history...)
}

// saveEventToHistory 将事件写入历史缓冲（仅对已启用历史的类型生效）
func (eb *EventBus) saveEventToHistory(eventType event.EventType, args []interface{}) {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	limit, enabled := eb.historyLimits[eventType]
	if !enabled {
		return
	}

	// 单参数发布直接存载荷，多参数发布存参数切片副本
	var entry interface{}
	if len(args) == 1 {
		entry = args[0]
	} else {
		entry = append([]interface{}(nil), args...)
	}

	history := append(eb.eventHistory[eventType], entry)
	if overflow := len(history) - limit; overflow > 0 {
		eb.metrics.trimmedHistory.Add(uint64(overflow))
		history = append([]interface{}(nil), history[overflow:]...)
	}
	eb.eventHistory[eventType] = history
}

// ==================== 配置与统计 ====================

// GetConfig 获取当前配置
func (eb *EventBus) GetConfig() (*types.EventBusConfig, error) {
	return eb.config.ToBusConfig(), nil
}

// PublishedCount 返回累计发布的事件数量
func (eb *EventBus) PublishedCount() uint64 {
	return eb.metrics.publishedEvents.Load()
}

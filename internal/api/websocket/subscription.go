package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	wstypes "github.com/deltaswapio/token-bridge-relayer/internal/api/websocket/types"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// 订阅类型
//
// 每种订阅类型对应事件总线上的一种注册表事件。
const (
	SubscriptionTokenRegistered  = "tokenRegistered"
	SubscriptionOwnerInitialized = "ownerInitialized"
)

// writeTimeout 单次WebSocket写入的超时
const writeTimeout = 10 * time.Second

// SubscriptionManager 订阅管理器
//
// 🔔 把WebSocket客户端挂载到进程内事件总线上：
// - 每个订阅向事件总线注册一个独立的处理器
// - 订阅时可选回放事件总线的历史缓冲，新接入的客户端能补齐近期事件
// - 连接关闭时清理该连接的全部订阅，防止处理器泄漏
type SubscriptionManager struct {
	logger        log.Logger
	subscriptions map[string]*Subscription
	mu            sync.RWMutex
	eventBus      event.EventBus

	// gorilla/websocket要求同一连接同时只有一个写入者，
	// 事件推送与请求响应共用按连接的写锁
	connLocks sync.Map // *websocket.Conn → *sync.Mutex
}

// Subscription 订阅信息
type Subscription struct {
	ID        string            // 订阅ID
	Type      string            // 订阅类型（tokenRegistered / ownerInitialized）
	EventType event.EventType   // 对应的事件总线类型
	Conn      *websocket.Conn   // WebSocket连接
	Handler   func(interface{}) // 事件处理器函数（用于取消订阅）
}

// NewSubscriptionManager 创建订阅管理器
//
// 创建时为两类注册表事件启用历史缓冲（容量取事件配置的默认上限），
// 之后接入的订阅可以通过ReplayHistory补齐近期事件。
func NewSubscriptionManager(logger log.Logger, eventBus event.EventBus) *SubscriptionManager {
	m := &SubscriptionManager{
		logger:        logger,
		subscriptions: make(map[string]*Subscription),
		eventBus:      eventBus,
	}

	if eventBus != nil {
		for _, eventType := range []event.EventType{
			event.EventTypeTokenRegistered,
			event.EventTypeOwnerInitialized,
		} {
			if err := eventBus.EnableEventHistory(eventType, 0); err != nil && logger != nil {
				logger.Warnf("启用事件历史失败: type=%s err=%v", eventType, err)
			}
		}
	}

	return m
}

// Subscribe 创建新订阅，返回订阅ID
func (m *SubscriptionManager) Subscribe(conn *websocket.Conn, subType string) (string, error) {
	eventType, ok := mapSubscriptionType(subType)
	if !ok {
		return "", fmt.Errorf("未知的订阅类型: %s", subType)
	}
	if m.eventBus == nil {
		return "", fmt.Errorf("事件总线未启用")
	}

	// 生成订阅ID
	subscriptionID := fmt.Sprintf("0x%s", uuid.New().String()[:8])

	// 处理器需要在订阅对象外创建，取消订阅时按引用注销
	handler := func(data interface{}) {
		m.handleEventForSubscription(subscriptionID, data)
	}

	subscription := &Subscription{
		ID:        subscriptionID,
		Type:      subType,
		EventType: eventType,
		Conn:      conn,
		Handler:   handler,
	}

	if err := m.eventBus.Subscribe(eventType, handler); err != nil {
		if m.logger != nil {
			m.logger.Errorf("挂载事件总线订阅失败: type=%s err=%v", eventType, err)
		}
		return "", fmt.Errorf("挂载事件总线订阅失败: %w", err)
	}

	m.mu.Lock()
	m.subscriptions[subscriptionID] = subscription
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Infof("新建WebSocket订阅: id=%s type=%s remote=%s",
			subscriptionID, subType, conn.RemoteAddr())
	}

	return subscriptionID, nil
}

// Unsubscribe 取消订阅
func (m *SubscriptionManager) Unsubscribe(subscriptionID string) error {
	m.mu.Lock()
	subscription, ok := m.subscriptions[subscriptionID]
	if ok {
		delete(m.subscriptions, subscriptionID)
	}
	m.mu.Unlock()

	if !ok {
		return nil // 订阅不存在，静默成功
	}

	m.detachFromBus(subscription)

	if m.logger != nil {
		m.logger.Infof("WebSocket订阅已取消: id=%s", subscriptionID)
	}
	return nil
}

// CleanupByConnection 清理指定连接的所有订阅
//
// 🔧 连接关闭时调用，确保事件总线上不残留指向死连接的处理器。
func (m *SubscriptionManager) CleanupByConnection(conn *websocket.Conn) {
	m.mu.Lock()
	var toRemove []*Subscription
	for id, sub := range m.subscriptions {
		if sub.Conn == conn {
			toRemove = append(toRemove, sub)
			delete(m.subscriptions, id)
		}
	}
	m.mu.Unlock()

	if len(toRemove) == 0 {
		return
	}

	for _, sub := range toRemove {
		m.detachFromBus(sub)
	}
	m.connLocks.Delete(conn)

	if m.logger != nil {
		m.logger.Debugf("已清理连接的%d个订阅: remote=%s", len(toRemove), conn.RemoteAddr())
	}
}

// ActiveSubscriptions 返回当前活跃订阅数
func (m *SubscriptionManager) ActiveSubscriptions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// detachFromBus 从事件总线注销订阅的处理器
func (m *SubscriptionManager) detachFromBus(subscription *Subscription) {
	if m.eventBus == nil || subscription.Handler == nil {
		return
	}
	if err := m.eventBus.Unsubscribe(subscription.EventType, subscription.Handler); err != nil {
		if m.logger != nil {
			m.logger.Warnf("注销事件总线订阅失败: id=%s type=%s err=%v",
				subscription.ID, subscription.EventType, err)
		}
	}
}

// handleEventForSubscription 处理订阅的实时事件
func (m *SubscriptionManager) handleEventForSubscription(subscriptionID string, data interface{}) {
	m.mu.RLock()
	subscription, ok := m.subscriptions[subscriptionID]
	m.mu.RUnlock()

	if !ok {
		return // 订阅已取消
	}

	payload := translateEventPayload(subscription.Type, data, false)
	if payload == nil {
		if m.logger != nil {
			m.logger.Warnf("事件载荷类型不符，已丢弃: subscription=%s type=%s", subscriptionID, subscription.Type)
		}
		return
	}

	if err := m.SendEvent(subscriptionID, payload); err != nil && m.logger != nil {
		m.logger.Warnf("推送事件失败: subscription=%s err=%v", subscriptionID, err)
	}
}

// ReplayHistory 回放事件总线中该订阅类型的历史事件（从旧到新），返回推送条数
//
// 在订阅确认送达客户端之后调用，回放与实时推送之间可能出现重复，
// 推送载荷的replayed标志供客户端去重。
func (m *SubscriptionManager) ReplayHistory(subscriptionID string) int {
	m.mu.RLock()
	subscription, ok := m.subscriptions[subscriptionID]
	m.mu.RUnlock()

	if !ok || m.eventBus == nil {
		return 0
	}

	history := m.eventBus.GetEventHistory(subscription.EventType)
	if len(history) == 0 {
		return 0
	}

	replayed := 0
	for _, entry := range history {
		payload := translateEventPayload(subscription.Type, entry, true)
		if payload == nil {
			continue
		}
		if err := m.SendEvent(subscription.ID, payload); err != nil {
			// 连接已断开，SendEvent内部会触发清理
			break
		}
		replayed++
	}

	if m.logger != nil {
		m.logger.Debugf("历史事件回放完成: subscription=%s count=%d", subscription.ID, replayed)
	}
	return replayed
}

// SendEvent 向订阅者发送事件
// 事件格式符合JSON-RPC 2.0通知规范
func (m *SubscriptionManager) SendEvent(subscriptionID string, payload interface{}) error {
	m.mu.RLock()
	subscription, ok := m.subscriptions[subscriptionID]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("subscription not found: %s", subscriptionID)
	}

	notification := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "tbr_subscription",
		"params": wstypes.SubscriptionEvent{
			Subscription: subscriptionID,
			Result:       payload,
		},
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	if err := m.writeMessage(subscription.Conn, data); err != nil {
		// 连接断开，异步清理订阅
		go m.Unsubscribe(subscriptionID)
		return err
	}

	return nil
}

// writeMessage 带超时地写入一条文本消息，同一连接上的写入串行化
func (m *SubscriptionManager) writeMessage(conn *websocket.Conn, data []byte) error {
	lockAny, _ := m.connLocks.LoadOrStore(conn, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)

	lock.Lock()
	defer lock.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// translateEventPayload 把事件总线载荷转换为推送DTO
//
// 事件总线的历史缓冲与实时派发传递同一种载荷类型，
// 回放与实时共用本转换，replayed标志区分来源。
func translateEventPayload(subType string, data interface{}, replayed bool) interface{} {
	switch subType {
	case SubscriptionTokenRegistered:
		if d, ok := data.(*types.TokenRegisteredEventData); ok {
			return wstypes.TokenRegisteredEvent{
				Type:                SubscriptionTokenRegistered,
				Mint:                d.Mint,
				SwapRate:            d.SwapRate,
				MaxNativeSwapAmount: d.MaxNativeSwapAmount,
				RequestID:           d.RequestID,
				Timestamp:           d.Timestamp.Unix(),
				Replayed:            replayed,
			}
		}
	case SubscriptionOwnerInitialized:
		if d, ok := data.(*types.OwnerInitializedEventData); ok {
			return wstypes.OwnerInitializedEvent{
				Type:      SubscriptionOwnerInitialized,
				Owner:     d.Owner,
				Timestamp: d.Timestamp.Unix(),
				Replayed:  replayed,
			}
		}
	}
	return nil
}

// mapSubscriptionType 将订阅类型映射到事件总线类型
func mapSubscriptionType(subType string) (event.EventType, bool) {
	switch subType {
	case SubscriptionTokenRegistered:
		return event.EventTypeTokenRegistered, true
	case SubscriptionOwnerInitialized:
		return event.EventTypeOwnerInitialized, true
	default:
		return "", false
	}
}

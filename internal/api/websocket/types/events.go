// Package types provides WebSocket event type definitions.
package types

// SubscriptionEvent WebSocket订阅事件
type SubscriptionEvent struct {
	Subscription string      `json:"subscription"` // 订阅ID
	Result       interface{} `json:"result"`       // 事件数据
}

// TokenRegisteredEvent 代币注册成功推送
//
// replayed=true 表示该条来自订阅时的历史回放而非实时发布，
// 回放与实时推送衔接处可能出现重复，客户端按mint去重。
type TokenRegisteredEvent struct {
	Type                string `json:"type"` // "tokenRegistered"
	Mint                string `json:"mint"`
	SwapRate            uint64 `json:"swapRate"`
	MaxNativeSwapAmount uint64 `json:"maxNativeSwapAmount"`
	RequestID           string `json:"requestId,omitempty"` // 触发注册的HTTP请求ID
	Timestamp           int64  `json:"timestamp"`           // Unix秒
	Replayed            bool   `json:"replayed"`
}

// OwnerInitializedEvent 所有者配置初始化推送
type OwnerInitializedEvent struct {
	Type      string `json:"type"` // "ownerInitialized"
	Owner     string `json:"owner"`
	Timestamp int64  `json:"timestamp"` // Unix秒
	Replayed  bool   `json:"replayed"`
}

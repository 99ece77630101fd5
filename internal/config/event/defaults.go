package event

import "time"

// 事件系统默认配置值
// 这些默认值基于事件驱动系统的最佳实践和性能考虑
const (
	// === 基础事件配置 ===

	// defaultEnabled 默认启用事件系统
	// 原因：注册成功事件驱动WebSocket推送与下游联动，默认开启
	defaultEnabled = true

	// defaultBufferSize 默认事件缓冲区大小设为1000
	// 原因：1000个事件的缓冲区能处理大多数突发事件场景
	// 平衡内存使用和事件处理能力，避免因缓冲区满而丢失事件
	defaultBufferSize = 1000

	// defaultMaxWorkers 默认事件处理工作者数量设为10
	// 原因：10个工作者能够并行处理多个事件，提高系统响应性
	// 避免单一工作者成为瓶颈，同时控制资源消耗
	defaultMaxWorkers = 10

	// defaultMaxSubscribers 默认最大订阅者数量设为1000
	// 原因：1000个订阅者能满足注册表事件的全部消费场景
	// 限制订阅者数量避免事件分发成为性能瓶颈
	defaultMaxSubscribers = 1000

	// defaultMaxEventHistory 默认每种事件保留100条历史
	// 原因：新接入的WebSocket客户端可以回放最近的注册事件
	// 100条覆盖了排查和补推的常见需求，内存占用可控
	defaultMaxEventHistory = 100

	// === 行为配置 ===

	// defaultDefaultAsync 默认异步分发事件
	// 原因：注册写路径不应被订阅者的处理速度拖慢
	defaultDefaultAsync = true

	// defaultEventTimeout 默认事件处理超时设为10秒
	// 原因：10秒足够完成推送类订阅者的处理，避免长时间阻塞
	defaultEventTimeout = 10 * time.Second
)

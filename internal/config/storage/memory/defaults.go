package memory

import "time"

// 内存存储默认配置值
// 这些默认值基于内存缓存的最佳实践
const (
	// === 基础配置 ===

	// defaultMaxMemory 默认最大内存使用量为64MB
	// 原因：注册记录体量很小，64MB已远超注册表的真实需求
	defaultMaxMemory = 64 << 20 // 64MB

	// defaultMaxEntries 默认最大条目数为10000
	// 原因：1万条注册记录足以覆盖可预见的代币数量
	defaultMaxEntries = 10000

	// defaultDefaultTTL 默认TTL为1小时
	// 原因：记录不可变，TTL只用于控制缓存的内存回收节奏
	defaultDefaultTTL = time.Hour

	// === 清理配置 ===

	// defaultCleanupInterval 默认清理间隔为10分钟
	// 原因：10分钟间隔及时清理过期数据，不会过于频繁
	defaultCleanupInterval = 10 * time.Minute
)

package registry

import "time"

// 注册表默认配置值
// 这些默认值与原生资产的链上约定保持一致
const (
	// defaultNativeMint 默认原生资产Mint地址
	// 原因：wrapped SOL是跨链桥的原生资产，地址是链上公认的固定值
	defaultNativeMint = "So11111111111111111111111111111111111111112"

	// defaultCacheEnabled 默认启用读路径缓存
	// 原因：注册记录不可变，缓存命中不会产生过期读取
	defaultCacheEnabled = true

	// defaultCacheTTL 默认缓存TTL为1小时
	// 原因：TTL只控制内存回收节奏，不影响数据正确性
	defaultCacheTTL = time.Hour

	// defaultTxnMaxRetries 默认事务冲突重试3次
	// 原因：注册冲突通常由并发注册同一Mint引起，3次重试足以
	// 让落败方观察到已提交的记录并返回确定性的冲突结果
	defaultTxnMaxRetries = 3
)

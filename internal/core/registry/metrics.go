package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus 指标：观测注册操作的结果分布、写路径冲突与读路径缓存效果
var (
	registryRegistrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tbr",
			Subsystem: "registry",
			Name:      "registrations_total",
			Help:      "Total number of token registration attempts by outcome.",
		},
		[]string{"outcome"},
	)
	registryTxnRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tbr",
			Subsystem: "registry",
			Name:      "txn_conflict_retries_total",
			Help:      "Total number of registration attempts retried after a transaction conflict.",
		},
	)
	registryCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tbr",
			Subsystem: "registry",
			Name:      "cache_lookups_total",
			Help:      "Total number of read-path cache lookups by result.",
		},
		[]string{"result"},
	)
	registryRegisterDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tbr",
			Subsystem: "registry",
			Name:      "register_duration_seconds",
			Help:      "Duration of Register calls including precondition checks and the atomic write.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		registryRegistrations,
		registryTxnRetries,
		registryCacheLookups,
		registryRegisterDuration,
	)
}

// 注册结果标签值
const (
	outcomeRegistered   = "registered"   // 注册成功提交
	outcomeUnauthorized = "unauthorized" // 检查1失败：调用者不是所有者
	outcomeConflict     = "conflict"     // 检查2失败：目标Mint已注册
	outcomeInvalid      = "invalid"      // 检查3/4失败：参数校验不通过
	outcomeError        = "error"        // 基础设施错误（存储、配置缺失、重试耗尽）
)

// 缓存查询结果标签值
const (
	cacheHit  = "hit"
	cacheMiss = "miss"
)

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apitypes "github.com/deltaswapio/token-bridge-relayer/internal/api/types"
)

// RateLimit 按IP限流中间件
//
// 读写分级限流：查询接口宽松，注册等写接口严格。
// 注册表的写入是低频管理操作，严格的写限流同时挡住误用和滥用。
type RateLimit struct {
	limiters   map[string]*rateLimiter
	mu         sync.RWMutex
	readLimit  int // 读操作QPS限制
	writeLimit int // 写操作QPS限制
}

// rateLimiter 简单的令牌桶限流器
type rateLimiter struct {
	tokens     int
	maxTokens  int
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimit 创建限流中间件
func NewRateLimit(readLimit, writeLimit int) *RateLimit {
	return &RateLimit{
		limiters:   make(map[string]*rateLimiter),
		readLimit:  readLimit,
		writeLimit: writeLimit,
	}
}

// Middleware 返回Gin中间件
func (m *RateLimit) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取客户端标识（IP地址）
		clientID := c.ClientIP()

		// 写操作使用严格限额
		limit := m.readLimit
		if isWriteRequest(c.Request.Method) {
			limit = m.writeLimit
		}

		if !m.allowRequest(clientID, isWriteRequest(c.Request.Method), limit) {
			WriteProblemDetails(c, apitypes.NewProblemDetails(
				apitypes.CodeCommonRateLimited,
				apitypes.LayerAPI,
				"请求频率超出限制，请稍后重试。",
				"request rate limit exceeded",
				http.StatusTooManyRequests,
				map[string]interface{}{
					"limit":      limit,
					"retryAfter": "1s",
				},
			))
			return
		}

		c.Next()
	}
}

// isWriteRequest 判断是否为写操作
func isWriteRequest(method string) bool {
	return method == http.MethodPost
}

// allowRequest 检查是否允许请求
//
// 读写各自独立计数，写操作打满限额不影响查询。
func (m *RateLimit) allowRequest(clientID string, isWrite bool, limit int) bool {
	key := clientID + ":r"
	if isWrite {
		key = clientID + ":w"
	}

	m.mu.Lock()
	limiter, exists := m.limiters[key]
	if !exists {
		limiter = &rateLimiter{
			tokens:     limit,
			maxTokens:  limit,
			lastRefill: time.Now(),
		}
		m.limiters[key] = limiter
	}
	m.mu.Unlock()

	return limiter.consume()
}

// consume 消费一个令牌
func (r *rateLimiter) consume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 补充令牌（每秒补充maxTokens个）
	now := time.Now()
	elapsed := now.Sub(r.lastRefill)
	tokensToAdd := int(elapsed.Seconds()) * r.maxTokens
	if tokensToAdd > 0 {
		r.tokens += tokensToAdd
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = now
	}

	// 尝试消费令牌
	if r.tokens > 0 {
		r.tokens--
		return true
	}

	return false
}

// TODO: 清理长期不活跃的limiter条目，避免map随客户端IP无限增长

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// API层Prometheus指标
//
// 指标在包级注册一次，中间件实例可以安全地重复创建。
// path标签使用路由模板（/api/v1/registry/tokens/:mint），
// 避免原始URL把标签基数撑爆。
var (
	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tbr",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tbr",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "path"},
	)

	apiRequestSize = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "tbr",
			Subsystem:  "api",
			Name:       "request_size_bytes",
			Help:       "API request size in bytes",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"method", "path"},
	)

	apiResponseSize = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "tbr",
			Subsystem:  "api",
			Name:       "response_size_bytes",
			Help:       "API response size in bytes",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		apiRequests,
		apiRequestDuration,
		apiRequestSize,
		apiResponseSize,
	)
}

// Metrics 指标收集中间件
// 收集API性能指标，用于监控和告警
type Metrics struct{}

// NewMetrics 创建指标中间件
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Middleware 返回Gin中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// 记录请求大小
		requestSize := c.Request.ContentLength

		// 处理请求
		c.Next()

		// 未匹配路由（404）没有模板，回退到原始路径
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		if requestSize > 0 {
			apiRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
		}

		// 收集指标
		duration := time.Since(start)
		status := c.Writer.Status()
		responseSize := c.Writer.Size()

		apiRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		apiRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

		if responseSize > 0 {
			apiResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
		}
	}
}

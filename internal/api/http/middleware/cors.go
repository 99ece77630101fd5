package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CORS 跨域资源共享中间件
//
// 按配置的来源白名单放行浏览器跨域请求，"*" 表示放行全部来源。
// 预检请求（OPTIONS）直接以204短路，不进入业务处理。
type CORS struct {
	allowAll bool
	origins  map[string]struct{}
	maxAge   int
}

// NewCORS 创建CORS中间件
func NewCORS(allowedOrigins []string) *CORS {
	m := &CORS{
		origins: make(map[string]struct{}, len(allowedOrigins)),
		maxAge:  600,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			m.allowAll = true
			continue
		}
		m.origins[origin] = struct{}{}
	}
	return m
}

// Middleware 返回Gin中间件
func (m *CORS) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			// 非跨域请求
			c.Next()
			return
		}

		if !m.allowAll {
			if _, ok := m.origins[origin]; !ok {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Vary", "Origin")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if reqHdrs := c.GetHeader("Access-Control-Request-Headers"); reqHdrs != "" {
			c.Header("Access-Control-Allow-Headers", reqHdrs)
		} else {
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-Relayer-Owner")
		}
		c.Header("Access-Control-Max-Age", strconv.Itoa(m.maxAge))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

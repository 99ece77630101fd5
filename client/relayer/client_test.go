package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedRequest 记录服务端观察到的请求
type capturedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]interface{}
}

// newCaptureServer 返回记录请求并回放固定响应的测试服务器
func newCaptureServer(t *testing.T, statusCode int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		captured.header = r.Header.Clone()
		if r.Body != nil {
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				captured.body = body
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(ts.Close)

	return ts, captured
}

// TestRegisterToken 测试代币注册的请求构造与响应解码
func TestRegisterToken(t *testing.T) {
	t.Run("成功注册解码完整记录", func(t *testing.T) {
		ts, captured := newCaptureServer(t, http.StatusCreated, `{
			"data": {
				"mint": "So11111111111111111111111111111111111111112",
				"swap_rate": 1000000,
				"max_native_swap_amount": 500,
				"is_registered": true,
				"is_native": false
			},
			"requestId": "req-1"
		}`)

		client := NewClient(ts.URL, time.Second)
		record, err := client.RegisterToken(context.Background(), "owner-key", &RegisterTokenRequest{
			Mint:                "So11111111111111111111111111111111111111112",
			SwapRate:            1000000,
			MaxNativeSwapAmount: 500,
		})
		require.NoError(t, err)

		assert.Equal(t, "POST", captured.method)
		assert.Equal(t, "/api/v1/registry/tokens", captured.path)
		assert.Equal(t, "owner-key", captured.header.Get("X-Relayer-Owner"))
		assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
		assert.Equal(t, float64(1000000), captured.body["swap_rate"])

		assert.Equal(t, uint64(1000000), record.SwapRate)
		assert.Equal(t, uint64(500), record.MaxNativeSwapAmount)
		assert.True(t, record.IsRegistered)
		assert.False(t, record.IsNative)
	})

	t.Run("所有者校验失败解码为APIError", func(t *testing.T) {
		ts, _ := newCaptureServer(t, http.StatusForbidden, `{
			"status": 403,
			"code": "REG_OWNER_ONLY",
			"layer": "token-registry",
			"userMessage": "只有注册表所有者可以注册代币。",
			"traceId": "trace-1",
			"timestamp": "2026-08-23T00:00:00Z"
		}`)

		client := NewClient(ts.URL, time.Second)
		_, err := client.RegisterToken(context.Background(), "intruder", &RegisterTokenRequest{Mint: "m"})
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
		assert.Equal(t, CodeOwnerOnly, apiErr.Code)
		assert.Equal(t, "trace-1", apiErr.TraceID)
		assert.False(t, apiErr.IsRetryable())
		assert.Contains(t, apiErr.Error(), CodeOwnerOnly)
	})

	t.Run("可重试标志透传", func(t *testing.T) {
		ts, _ := newCaptureServer(t, http.StatusServiceUnavailable, `{
			"code": "COMMON_SERVICE_UNAVAILABLE",
			"layer": "token-registry",
			"userMessage": "服务暂时不可用，请稍后重试。",
			"details": {"retryable": true},
			"traceId": "trace-2"
		}`)

		client := NewClient(ts.URL, time.Second)
		_, err := client.RegisterToken(context.Background(), "owner", &RegisterTokenRequest{Mint: "m"})

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.True(t, apiErr.IsRetryable())
	})

	t.Run("非结构化错误体退化为原始错误", func(t *testing.T) {
		ts, _ := newCaptureServer(t, http.StatusInternalServerError, `gateway exploded`)

		client := NewClient(ts.URL, time.Second)
		_, err := client.RegisterToken(context.Background(), "owner", &RegisterTokenRequest{Mint: "m"})
		require.Error(t, err)

		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr))
		assert.Contains(t, err.Error(), "http 500")
		assert.Contains(t, err.Error(), "gateway exploded")
	})
}

// TestGetToken 测试单条查询
func TestGetToken(t *testing.T) {
	t.Run("按Mint查询", func(t *testing.T) {
		ts, captured := newCaptureServer(t, http.StatusOK, `{
			"data": {"mint": "MintA", "swap_rate": 7, "is_registered": true}
		}`)

		client := NewClient(ts.URL, time.Second)
		record, err := client.GetToken(context.Background(), "MintA")
		require.NoError(t, err)

		assert.Equal(t, "GET", captured.method)
		assert.Equal(t, "/api/v1/registry/tokens/MintA", captured.path)
		assert.Equal(t, uint64(7), record.SwapRate)
	})

	t.Run("未注册返回REG_TOKEN_NOT_FOUND", func(t *testing.T) {
		ts, _ := newCaptureServer(t, http.StatusNotFound, `{
			"code": "REG_TOKEN_NOT_FOUND",
			"layer": "token-registry",
			"userMessage": "该Mint没有注册记录。",
			"traceId": "trace-3"
		}`)

		client := NewClient(ts.URL, time.Second)
		_, err := client.GetToken(context.Background(), "MintB")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, CodeTokenNotFound, apiErr.Code)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	})
}

// TestListTokens 测试分页参数与列表解码
func TestListTokens(t *testing.T) {
	ts, captured := newCaptureServer(t, http.StatusOK, `{
		"data": {
			"tokens": [
				{"mint": "MintA", "swap_rate": 1, "is_registered": true},
				{"mint": "MintB", "swap_rate": 2, "is_registered": true}
			],
			"pagination": {"page": 2, "pageSize": 5, "totalItems": 12, "totalPages": 3, "hasNext": true, "hasPrev": true}
		}
	}`)

	client := NewClient(ts.URL, time.Second)
	list, err := client.ListTokens(context.Background(), 2, 5)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/registry/tokens", captured.path)
	assert.Contains(t, captured.query, "page=2")
	assert.Contains(t, captured.query, "pageSize=5")

	require.Len(t, list.Tokens, 2)
	assert.Equal(t, "MintA", list.Tokens[0].Mint)
	assert.Equal(t, int64(12), list.Pagination.TotalItems)
	assert.True(t, list.Pagination.HasNext)
}

// TestOwnerOperations 测试所有者配置的查询与初始化
func TestOwnerOperations(t *testing.T) {
	t.Run("未初始化时Initialized为false", func(t *testing.T) {
		ts, _ := newCaptureServer(t, http.StatusOK, `{"data": {"initialized": false}}`)

		client := NewClient(ts.URL, time.Second)
		info, err := client.GetOwner(context.Background())
		require.NoError(t, err)
		assert.False(t, info.Initialized)
		assert.Empty(t, info.Owner)
	})

	t.Run("初始化发送owner字段", func(t *testing.T) {
		ts, captured := newCaptureServer(t, http.StatusCreated, `{
			"data": {"owner": "OwnerKey", "initialized": true}
		}`)

		client := NewClient(ts.URL, time.Second)
		info, err := client.InitializeOwner(context.Background(), "OwnerKey")
		require.NoError(t, err)

		assert.Equal(t, "POST", captured.method)
		assert.Equal(t, "/api/v1/registry/owner", captured.path)
		assert.Equal(t, "OwnerKey", captured.body["owner"])
		assert.True(t, info.Initialized)
	})

	t.Run("重复初始化返回REG_OWNER_EXISTS", func(t *testing.T) {
		ts, _ := newCaptureServer(t, http.StatusConflict, `{
			"code": "REG_OWNER_EXISTS",
			"layer": "token-registry",
			"userMessage": "所有者配置已初始化。",
			"traceId": "trace-4"
		}`)

		client := NewClient(ts.URL, time.Second)
		_, err := client.InitializeOwner(context.Background(), "OwnerKey")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, CodeOwnerExists, apiErr.Code)
	})
}

// TestPing 测试健康检查走根路径
func TestPing(t *testing.T) {
	ts, captured := newCaptureServer(t, http.StatusOK, `{"status": "healthy"}`)

	client := NewClient(ts.URL, time.Second)
	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "/health", captured.path)
}

// TestBaseURLNormalization 测试基础地址的规范化
func TestBaseURLNormalization(t *testing.T) {
	ts, captured := newCaptureServer(t, http.StatusOK, `{"data": {"initialized": false}}`)

	// 带/api/v1后缀与尾部斜杠的地址不应产生重复前缀
	for _, baseURL := range []string{ts.URL, ts.URL + "/", ts.URL + "/api/v1", ts.URL + "/api/v1/"} {
		client := NewClient(baseURL, time.Second)
		_, err := client.GetOwner(context.Background())
		require.NoError(t, err, "baseURL=%s", baseURL)
		assert.Equal(t, "/api/v1/registry/owner", captured.path, "baseURL=%s", baseURL)
	}
}

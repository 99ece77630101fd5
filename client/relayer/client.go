// Package relayer 提供注册表API的Go客户端
//
// 🎯 **客户端定位**
//
// 轻客户端：不持有任何本地状态，所有操作都映射为一次HTTP往返。
// 服务端的Problem Details错误被解码为*APIError，调用方可以按
// 错误码进行程序化处理。
package relayer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// 服务端错误码（与注册表API的Problem Details契约一致）
const (
	CodeOwnerOnly           = "REG_OWNER_ONLY"
	CodeTokenExists         = "REG_TOKEN_EXISTS"
	CodeZeroSwapRate        = "REG_ZERO_SWAP_RATE"
	CodeNativeSwapLimit     = "REG_NATIVE_SWAP_LIMIT"
	CodeTokenNotFound       = "REG_TOKEN_NOT_FOUND"
	CodeOwnerExists         = "REG_OWNER_EXISTS"
	CodeOwnerNotInitialized = "REG_OWNER_NOT_INITIALIZED"
)

// headerRelayerOwner 携带调用者身份的请求头
const headerRelayerOwner = "X-Relayer-Owner"

// ==================== 📋 数据传输结构 ====================

// TokenRecord 单条注册记录
type TokenRecord struct {
	Mint                string `json:"mint"`                   // Mint地址（base58）
	SwapRate            uint64 `json:"swap_rate"`              // 兑换汇率
	MaxNativeSwapAmount uint64 `json:"max_native_swap_amount"` // 最大原生币兑换额度
	IsRegistered        bool   `json:"is_registered"`          // 注册标志
	IsNative            bool   `json:"is_native"`              // 是否为原生资产
}

// RegisterTokenRequest 代币注册请求
type RegisterTokenRequest struct {
	Mint                string `json:"mint"`
	SwapRate            uint64 `json:"swap_rate"`
	MaxNativeSwapAmount uint64 `json:"max_native_swap_amount"`
}

// PaginationMeta 分页元信息
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// TokenList 注册记录列表
type TokenList struct {
	Tokens     []TokenRecord  `json:"tokens"`
	Pagination PaginationMeta `json:"pagination"`
}

// OwnerInfo 所有者配置信息
type OwnerInfo struct {
	Owner       string `json:"owner"`
	Initialized bool   `json:"initialized"`
}

// envelope 服务端统一成功响应外壳
type envelope struct {
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"requestId"`
}

// ==================== ❌ 错误解码 ====================

// APIError 服务端返回的结构化错误
//
// 字段对应Problem Details响应体；Status是HTTP状态码。
type APIError struct {
	Status      int                    `json:"status"`
	Code        string                 `json:"code"`
	Layer       string                 `json:"layer"`
	UserMessage string                 `json:"userMessage"`
	Detail      string                 `json:"detail"`
	Details     map[string]interface{} `json:"details"`
	TraceID     string                 `json:"traceId"`
}

// Error 实现error接口
func (e *APIError) Error() string {
	if e.UserMessage != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.UserMessage)
	}
	return fmt.Sprintf("%s (http %d)", e.Code, e.Status)
}

// IsRetryable 服务端是否标记了可重试
func (e *APIError) IsRetryable() bool {
	if e.Details == nil {
		return false
	}
	retryable, ok := e.Details["retryable"].(bool)
	return ok && retryable
}

// decodeError 将非2xx响应解码为*APIError
// 响应体不是Problem Details时退化为携带原始内容的错误
func decodeError(statusCode int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.Status = statusCode
		return &apiErr
	}
	return fmt.Errorf("http %d: %s", statusCode, strings.TrimSpace(string(body)))
}

// ==================== 🔌 客户端 ====================

// Client 注册表API客户端
type Client struct {
	serverRoot string // 服务根地址（健康检查等根路径端点）
	baseURL    string // API基础地址（含/api/v1前缀）
	httpClient *http.Client
}

// NewClient 创建注册表API客户端
//
// baseURL可以带或不带/api/v1后缀，超时为0时使用30秒默认值。
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	serverRoot := strings.TrimRight(strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api/v1"), "/")

	return &Client{
		serverRoot: serverRoot,
		baseURL:    serverRoot + "/api/v1",
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// do 执行一次HTTP往返并解码data载荷
func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if result != nil {
		var env envelope
		if err := json.Unmarshal(respBody, &env); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}

	return nil
}

// get 发送GET请求
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, u, nil, nil, result)
}

// post 发送POST请求
func (c *Client) post(ctx context.Context, path string, headers map[string]string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, c.baseURL+path, headers, body, result)
}

// ==================== 🎯 注册表操作 ====================

// RegisterToken 以caller身份注册代币
//
// caller是调用者公钥的base58编码，服务端校验其与所有者配置一致。
func (c *Client) RegisterToken(ctx context.Context, caller string, req *RegisterTokenRequest) (*TokenRecord, error) {
	var record TokenRecord
	headers := map[string]string{headerRelayerOwner: caller}
	if err := c.post(ctx, "/registry/tokens", headers, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetToken 按Mint地址查询注册记录
func (c *Client) GetToken(ctx context.Context, mint string) (*TokenRecord, error) {
	var record TokenRecord
	if err := c.get(ctx, "/registry/tokens/"+url.PathEscape(mint), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListTokens 分页枚举注册记录
//
// page与pageSize小于等于0时由服务端使用默认值。
func (c *Client) ListTokens(ctx context.Context, page, pageSize int) (*TokenList, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}

	var list TokenList
	if err := c.get(ctx, "/registry/tokens", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetOwner 查询所有者配置
// 未初始化不是错误，通过Initialized字段区分。
func (c *Client) GetOwner(ctx context.Context) (*OwnerInfo, error) {
	var info OwnerInfo
	if err := c.get(ctx, "/registry/owner", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// InitializeOwner 一次性初始化所有者配置
func (c *Client) InitializeOwner(ctx context.Context, owner string) (*OwnerInfo, error) {
	var info OwnerInfo
	if err := c.post(ctx, "/registry/owner", nil, &InitializeOwnerRequest{Owner: owner}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// InitializeOwnerRequest 所有者配置初始化请求
type InitializeOwnerRequest struct {
	Owner string `json:"owner"`
}

// Ping 健康检查（根路径端点，不在/api/v1下）
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverRoot+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decodeError(resp.StatusCode, body)
	}
	return nil
}

// Close 释放空闲连接
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

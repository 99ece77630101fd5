// Package types provides HTTP response type definitions.
package types

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// WithTimestamp 添加时间戳
func (r *SuccessResponse) WithTimestamp(timestamp string) *SuccessResponse {
	r.Timestamp = timestamp
	return r
}

// ==================== 📋 注册表响应结构 ====================

// TokenResponse 单条注册记录的响应
//
// is_native 是查询时的目录判定结果，不属于持久化记录本身。
type TokenResponse struct {
	Mint                string `json:"mint"`                   // Mint地址（base58）
	SwapRate            uint64 `json:"swap_rate"`              // 兑换汇率
	MaxNativeSwapAmount uint64 `json:"max_native_swap_amount"` // 最大原生币兑换额度
	IsRegistered        bool   `json:"is_registered"`          // 注册标志
	IsNative            bool   `json:"is_native"`              // 是否为原生资产
}

// TokenListResponse 注册记录列表响应
type TokenListResponse struct {
	Tokens     []TokenResponse `json:"tokens"`
	Pagination PaginationMeta  `json:"pagination"`
}

// OwnerResponse 所有者配置响应
type OwnerResponse struct {
	Owner       string `json:"owner,omitempty"` // 所有者公钥（base58），未初始化时省略
	Initialized bool   `json:"initialized"`     // 配置是否已初始化
}

// RegisterTokenRequest 代币注册请求体
//
// 调用者身份不在请求体中，从受信任的请求头解析。
type RegisterTokenRequest struct {
	Mint                string `json:"mint" binding:"required"` // Mint地址（base58）
	SwapRate            uint64 `json:"swap_rate"`               // 兑换汇率，必须大于0
	MaxNativeSwapAmount uint64 `json:"max_native_swap_amount"`  // 最大原生币兑换额度
}

// InitializeOwnerRequest 所有者配置初始化请求体
type InitializeOwnerRequest struct {
	Owner string `json:"owner" binding:"required"` // 所有者公钥（base58）
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string                 `json:"status"` // healthy, degraded, unhealthy
	Liveness   string                 `json:"liveness"`
	Readiness  string                 `json:"readiness"`
	Version    string                 `json:"version"`
	Uptime     string                 `json:"uptime"`
	Timestamp  string                 `json:"timestamp"`
	Components map[string]interface{} `json:"components"`
}

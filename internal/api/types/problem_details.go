package types

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ProblemDetails 标准错误响应结构（基于 RFC7807 + 扩展字段）
//
// API层所有错误响应统一使用本结构，Content-Type 为 application/problem+json。
// Code 供程序化处理，UserMessage 面向人类读者，TraceID 用于跨日志关联。
type ProblemDetails struct {
	// RFC7807 标准字段
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// 扩展字段（必填）
	Code        string                 `json:"code"`
	Layer       string                 `json:"layer"`
	UserMessage string                 `json:"userMessage"`
	Details     map[string]interface{} `json:"details,omitempty"`
	TraceID     string                 `json:"traceId"`
	Timestamp   string                 `json:"timestamp"`
}

// Error 实现 error 接口
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.UserMessage
}

// WriteJSON 将 Problem Details 写入 HTTP 响应
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}

// NewProblemDetails 创建新的 Problem Details
func NewProblemDetails(
	code string,
	layer string,
	userMessage string,
	detail string,
	status int,
	details map[string]interface{},
) *ProblemDetails {
	traceID := uuid.New().String()
	if details == nil {
		details = make(map[string]interface{})
	}

	return &ProblemDetails{
		Code:        code,
		Layer:       layer,
		UserMessage: userMessage,
		Detail:      detail,
		Status:      status,
		Details:     details,
		TraceID:     traceID,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// IsProblemDetails 检查错误是否为 Problem Details
func IsProblemDetails(err error) (*ProblemDetails, bool) {
	if pd, ok := err.(*ProblemDetails); ok {
		return pd, true
	}
	return nil, false
}

// 错误码常量
//
// REG_ 前缀对应注册核心的三类拒绝原因与查询失败，
// COMMON_ 前缀对应传输层和基础设施错误。
const (
	// 注册表错误
	CodeRegOwnerOnly           = "REG_OWNER_ONLY"            // 调用者不是所有者（403）
	CodeRegTokenExists         = "REG_TOKEN_EXISTS"          // Mint已注册（409）
	CodeRegZeroSwapRate        = "REG_ZERO_SWAP_RATE"        // 兑换汇率为0（400）
	CodeRegNativeSwapLimit     = "REG_NATIVE_SWAP_LIMIT"     // 原生资产携带非零额度（400）
	CodeRegTokenNotFound       = "REG_TOKEN_NOT_FOUND"       // Mint没有注册记录（404）
	CodeRegOwnerNotInitialized = "REG_OWNER_NOT_INITIALIZED" // 所有者配置未初始化（503）
	CodeRegOwnerExists         = "REG_OWNER_EXISTS"          // 所有者配置已存在（409）

	// 通用错误
	CodeCommonValidationError    = "COMMON_VALIDATION_ERROR"
	CodeCommonInternalError      = "COMMON_INTERNAL_ERROR"
	CodeCommonTimeout            = "COMMON_TIMEOUT"
	CodeCommonRateLimited        = "COMMON_RATE_LIMITED"
	CodeCommonServiceUnavailable = "COMMON_SERVICE_UNAVAILABLE"
)

// Layer 常量
const (
	// LayerTokenRegistry 错误来源于注册核心的业务判定
	LayerTokenRegistry = "token-registry"

	// LayerAPI 错误来源于传输层（请求解析、参数格式等）
	LayerAPI = "api"
)

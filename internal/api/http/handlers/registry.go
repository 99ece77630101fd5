// registry.go 实现代币注册表的HTTP API端点
//
// 🎯 **注册表API架构**
//
// 写路径只有代币注册与所有者初始化两个端点，全部经由注册核心执行
// 有序前置检查与原子写入；查询端点直接消费注册核心的查询契约。
// 领域错误统一通过 c.Error 上报，由 ErrorHandler 中间件翻译成
// Problem Details 响应。

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deltaswapio/token-bridge-relayer/internal/api/http/middleware"
	httptypes "github.com/deltaswapio/token-bridge-relayer/internal/api/http/types"
	apitypes "github.com/deltaswapio/token-bridge-relayer/internal/api/types"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	registryiface "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// 端点级超时
//
// 写操作给注册事务的有限次重试留出余量，查询操作快速失败。
const (
	registerTimeout = 10 * time.Second
	queryTimeout    = 5 * time.Second
)

// ==================== 🏗️ 注册表API处理器 ====================

// RegistryHandler 注册表处理器
type RegistryHandler struct {
	registry    registryiface.TokenRegistry
	configStore registryiface.ConfigStore
	assets      registryiface.AssetDirectory
	logger      log.Logger
}

// NewRegistryHandler 创建注册表处理器
func NewRegistryHandler(
	registry registryiface.TokenRegistry,
	configStore registryiface.ConfigStore,
	assets registryiface.AssetDirectory,
	logger log.Logger,
) *RegistryHandler {
	return &RegistryHandler{
		registry:    registry,
		configStore: configStore,
		assets:      assets,
		logger:      logger,
	}
}

// RegisterRoutes 注册路由
func (h *RegistryHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	tokens := v1.Group("/registry/tokens")
	{
		tokens.POST("", h.RegisterToken)
		tokens.GET("", h.ListTokens)
		tokens.GET("/:mint", h.GetToken)
	}

	owner := v1.Group("/registry/owner")
	{
		owner.GET("", h.GetOwner)
		owner.POST("", h.InitializeOwner)
	}
}

// ==================== 🎯 核心API方法实现 ====================

// RegisterToken 注册代币
//
// 📌 **接口说明**：为指定Mint写入不可变的注册配置记录
//
// **HTTP Method**: `POST`
// **URL Path**: `/api/v1/registry/tokens`
//
// **请求头**：
//   - X-Relayer-Owner (string, required): 调用者公钥，base58编码
//
// **请求体参数**：
//   - mint (string, required): Mint地址，base58编码
//   - swap_rate (number): 兑换汇率，必须大于0
//   - max_native_swap_amount (number): 最大原生币兑换额度，原生资产必须为0
//
// **请求体示例**：
//
//	{
//	  "mint": "So11111111111111111111111111111111111111112",
//	  "swap_rate": 1000000,
//	  "max_native_swap_amount": 0
//	}
//
// ✅ **成功响应**：201，data为完整的注册记录
//
// ❌ **失败响应**（application/problem+json）：
//   - 403 REG_OWNER_ONLY        调用者不是所有者
//   - 409 REG_TOKEN_EXISTS      该Mint已有注册记录
//   - 400 REG_ZERO_SWAP_RATE    兑换汇率为0
//   - 400 REG_NATIVE_SWAP_LIMIT 原生资产携带非零额度
//
// 💡 **使用说明**：
// - 前置检查按固定顺序执行，返回的是第一个失败的检查
// - 失败不产生任何状态变更，可以修正参数后重试
func (h *RegistryHandler) RegisterToken(c *gin.Context) {
	var req httptypes.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c,
			apitypes.CodeCommonValidationError,
			"请求体格式错误。",
			err.Error(),
			http.StatusBadRequest,
			nil,
		)
		return
	}

	caller, ok := callerFromRequest(c)
	if !ok {
		return
	}
	mint, ok := mintFromString(c, "mint", req.Mint)
	if !ok {
		return
	}

	if h.logger != nil {
		h.logger.Debugf("处理代币注册请求: mint=%s", req.Mint)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), registerTimeout)
	defer cancel()

	token, err := h.registry.Register(ctx, caller, mint, req.SwapRate, req.MaxNativeSwapAmount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, httptypes.NewSuccessResponse(h.tokenResponse(mint, token)).
		WithRequestID(middleware.GetRequestID(c)).
		WithTimestamp(time.Now().UTC().Format(time.RFC3339)))
}

// GetToken 查询单个注册记录
//
// 📌 **接口说明**：按Mint地址查询注册配置
//
// **HTTP Method**: `GET`
// **URL Path**: `/api/v1/registry/tokens/{mint}`
//
// 记录不存在返回 404 REG_TOKEN_NOT_FOUND。
func (h *RegistryHandler) GetToken(c *gin.Context) {
	mint, ok := mintFromString(c, "mint", c.Param("mint"))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	token, err := h.registry.GetToken(ctx, mint)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httptypes.NewSuccessResponse(h.tokenResponse(mint, token)).
		WithRequestID(middleware.GetRequestID(c)).
		WithTimestamp(time.Now().UTC().Format(time.RFC3339)))
}

// ListTokens 枚举注册记录
//
// GET /api/v1/registry/tokens?page=1&pageSize=20
//
// 结果按Mint地址字典序排序，分页在排序后的全量结果上切片。
func (h *RegistryHandler) ListTokens(c *gin.Context) {
	var page httptypes.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		middleware.WriteError(c,
			apitypes.CodeCommonValidationError,
			"分页参数无效。",
			err.Error(),
			http.StatusBadRequest,
			nil,
		)
		return
	}
	page.Normalize()

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	entries, err := h.registry.ListTokens(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	total := len(entries)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit()
	if end > total {
		end = total
	}

	tokens := make([]httptypes.TokenResponse, 0, end-start)
	for _, entry := range entries[start:end] {
		token := entry.Token
		tokens = append(tokens, h.tokenResponse(entry.Mint, &token))
	}

	c.JSON(http.StatusOK, httptypes.NewSuccessResponse(httptypes.TokenListResponse{
		Tokens:     tokens,
		Pagination: httptypes.NewPaginationMeta(page.Page, page.PageSize, int64(total)),
	}).
		WithRequestID(middleware.GetRequestID(c)).
		WithTimestamp(time.Now().UTC().Format(time.RFC3339)))
}

// GetOwner 查询所有者配置
//
// GET /api/v1/registry/owner
//
// 配置未初始化时返回200与 initialized=false，不视为错误。
func (h *RegistryHandler) GetOwner(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	owner, err := h.configStore.GetOwner(ctx)
	if err != nil {
		if errors.Is(err, types.ErrSenderConfigNotInitialized) {
			c.JSON(http.StatusOK, httptypes.NewSuccessResponse(httptypes.OwnerResponse{
				Initialized: false,
			}).WithRequestID(middleware.GetRequestID(c)))
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httptypes.NewSuccessResponse(httptypes.OwnerResponse{
		Owner:       owner.String(),
		Initialized: true,
	}).WithRequestID(middleware.GetRequestID(c)))
}

// InitializeOwner 初始化所有者配置
//
// 📌 **接口说明**：一次性写入所有者公钥，已存在时返回 409 REG_OWNER_EXISTS
//
// **HTTP Method**: `POST`
// **URL Path**: `/api/v1/registry/owner`
//
// 💡 **使用说明**：
// - 引导场景下尚不存在所有者，本端点不做调用者校验；
//   服务默认只监听回环地址，对外暴露时应由部署层限制访问
// - 常规部署建议通过配置文件在启动期完成引导，本端点供
//   跳过配置引导的部署手工初始化
func (h *RegistryHandler) InitializeOwner(c *gin.Context) {
	var req httptypes.InitializeOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c,
			apitypes.CodeCommonValidationError,
			"请求体格式错误。",
			err.Error(),
			http.StatusBadRequest,
			nil,
		)
		return
	}

	owner, ok := principalFromString(c, "owner", req.Owner)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), registerTimeout)
	defer cancel()

	if err := h.configStore.InitializeOwner(ctx, owner); err != nil {
		_ = c.Error(err)
		return
	}

	if h.logger != nil {
		h.logger.Infof("所有者配置已通过API初始化: %s", owner)
	}

	c.JSON(http.StatusCreated, httptypes.NewSuccessResponse(httptypes.OwnerResponse{
		Owner:       owner.String(),
		Initialized: true,
	}).WithRequestID(middleware.GetRequestID(c)))
}

// tokenResponse 组装注册记录响应
func (h *RegistryHandler) tokenResponse(mint types.MintAddress, token *types.RegisteredToken) httptypes.TokenResponse {
	return httptypes.TokenResponse{
		Mint:                mint.String(),
		SwapRate:            token.SwapRate,
		MaxNativeSwapAmount: token.MaxNativeSwapAmount,
		IsRegistered:        token.IsRegistered,
		IsNative:            h.assets.IsNativeAsset(mint),
	}
}

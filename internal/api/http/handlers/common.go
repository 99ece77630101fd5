// Package handlers 提供注册表HTTP API处理器
package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/deltaswapio/token-bridge-relayer/internal/api/http/middleware"
	apitypes "github.com/deltaswapio/token-bridge-relayer/internal/api/types"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// ==================== 🎯 调用者身份与参数解析 ====================

// HeaderRelayerOwner 携带调用者身份的请求头
//
// 服务默认只监听回环地址，身份头由部署层的反向代理在完成边界
// 认证后注入。注册核心仍会校验该身份等于配置中的所有者。
const HeaderRelayerOwner = "X-Relayer-Owner"

// callerFromRequest 从请求头解析调用者身份
//
// 头缺失或编码非法属于传输层校验失败，直接写出400；
// 身份与所有者不符的判定留给注册核心（403）。
func callerFromRequest(c *gin.Context) (types.Principal, bool) {
	raw := c.GetHeader(HeaderRelayerOwner)
	if raw == "" {
		middleware.WriteError(c,
			apitypes.CodeCommonValidationError,
			"缺少调用者身份请求头。",
			fmt.Sprintf("missing %s header", HeaderRelayerOwner),
			400,
			map[string]interface{}{"header": HeaderRelayerOwner},
		)
		return types.Principal{}, false
	}

	caller, err := types.ParsePrincipal(raw)
	if err != nil {
		middleware.WriteError(c,
			apitypes.CodeCommonValidationError,
			"调用者身份编码无效，应为base58编码的32字节公钥。",
			err.Error(),
			400,
			map[string]interface{}{"header": HeaderRelayerOwner},
		)
		return types.Principal{}, false
	}
	return caller, true
}

// mintFromString 解析base58编码的Mint地址
func mintFromString(c *gin.Context, field, raw string) (types.MintAddress, bool) {
	mint, err := types.ParseMintAddress(raw)
	if err != nil {
		middleware.WriteError(c,
			apitypes.CodeCommonValidationError,
			"Mint地址编码无效，应为base58编码的32字节公钥。",
			err.Error(),
			400,
			map[string]interface{}{"field": field},
		)
		return types.MintAddress{}, false
	}
	return mint, true
}

// principalFromString 解析base58编码的权限主体
func principalFromString(c *gin.Context, field, raw string) (types.Principal, bool) {
	p, err := types.ParsePrincipal(raw)
	if err != nil {
		middleware.WriteError(c,
			apitypes.CodeCommonValidationError,
			"公钥编码无效，应为base58编码的32字节公钥。",
			err.Error(),
			400,
			map[string]interface{}{"field": field},
		)
		return types.Principal{}, false
	}
	return p, true
}

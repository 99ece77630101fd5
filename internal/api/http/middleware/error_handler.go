package middleware

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apitypes "github.com/deltaswapio/token-bridge-relayer/internal/api/types"
	infralog "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// ErrorHandler 错误处理中间件
//
// 处理函数通过 c.Error(err) 上报领域错误，这里统一翻译成 Problem Details：
//   - 授权失败   → 403 REG_OWNER_ONLY
//   - 状态冲突   → 409 REG_TOKEN_EXISTS / REG_OWNER_EXISTS
//   - 校验失败   → 400 REG_ZERO_SWAP_RATE / REG_NATIVE_SWAP_LIMIT
//   - 记录不存在 → 404 REG_TOKEN_NOT_FOUND
//   - 基础设施   → 503 / 500
//
// 已经是 Problem Details 的错误原样写出，处理函数可以直接构造精确响应。
func ErrorHandler(logger infralog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		problem, ok := apitypes.IsProblemDetails(err)
		if !ok {
			problem = translateError(err, c.Request.URL.Path)
		}

		if logger != nil {
			if zl := logger.GetZapLogger(); zl != nil {
				zl.Error("HTTP error",
					zap.String("code", problem.Code),
					zap.String("traceId", problem.TraceID),
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
		}
		problem.WriteJSON(c.Writer)
		c.Abort()
	}
}

// translateError 把领域错误翻译成 Problem Details
func translateError(err error, path string) *apitypes.ProblemDetails {
	if regErr, ok := types.IsRegistrationError(err); ok {
		return translateRegistrationError(regErr)
	}

	switch {
	case errors.Is(err, types.ErrTokenNotFound):
		return apitypes.NewProblemDetails(
			apitypes.CodeRegTokenNotFound,
			apitypes.LayerTokenRegistry,
			"指定的Mint没有注册记录。",
			err.Error(),
			404,
			nil,
		)

	case errors.Is(err, types.ErrSenderConfigExists):
		return apitypes.NewProblemDetails(
			apitypes.CodeRegOwnerExists,
			apitypes.LayerTokenRegistry,
			"所有者配置已初始化，不允许重复初始化。",
			err.Error(),
			409,
			nil,
		)

	case errors.Is(err, types.ErrSenderConfigNotInitialized):
		// 部署尚未完成引导，注册请求暂时无法受理
		return apitypes.NewProblemDetails(
			apitypes.CodeRegOwnerNotInitialized,
			apitypes.LayerTokenRegistry,
			"所有者配置尚未初始化，服务未就绪。",
			err.Error(),
			503,
			nil,
		)

	case errors.Is(err, storage.ErrTxnConflict):
		// 有限次重试耗尽，留给客户端退避重试
		return apitypes.NewProblemDetails(
			apitypes.CodeCommonServiceUnavailable,
			apitypes.LayerTokenRegistry,
			"注册请求因事务冲突暂时失败，请稍后重试。",
			err.Error(),
			503,
			map[string]interface{}{"retryable": true},
		)
	}

	return apitypes.NewProblemDetails(
		apitypes.CodeCommonInternalError,
		apitypes.LayerTokenRegistry,
		"服务器内部错误，请稍后重试或联系管理员。",
		fmt.Sprintf("Internal error: %v", err),
		500,
		map[string]interface{}{"path": path},
	)
}

// translateRegistrationError 翻译注册操作的三类拒绝原因
func translateRegistrationError(regErr *types.RegistrationError) *apitypes.ProblemDetails {
	details := map[string]interface{}{}
	if !regErr.Mint.IsZero() {
		details["mint"] = regErr.Mint.String()
	}

	switch {
	case regErr.IsAuthorizationError():
		return apitypes.NewProblemDetails(
			apitypes.CodeRegOwnerOnly,
			apitypes.LayerTokenRegistry,
			"只有注册表所有者可以执行该操作。",
			regErr.Error(),
			403,
			details,
		)

	case regErr.IsStateConflict():
		return apitypes.NewProblemDetails(
			apitypes.CodeRegTokenExists,
			apitypes.LayerTokenRegistry,
			"该Mint已有注册记录，注册记录不可变更。",
			regErr.Error(),
			409,
			details,
		)

	case regErr.Reason == types.RegistrationRejectZeroSwapRate:
		return apitypes.NewProblemDetails(
			apitypes.CodeRegZeroSwapRate,
			apitypes.LayerTokenRegistry,
			"兑换汇率必须大于0。",
			regErr.Error(),
			400,
			details,
		)

	case regErr.Reason == types.RegistrationRejectNativeSwapNotAllowed:
		return apitypes.NewProblemDetails(
			apitypes.CodeRegNativeSwapLimit,
			apitypes.LayerTokenRegistry,
			"原生资产的最大兑换额度必须为0。",
			regErr.Error(),
			400,
			details,
		)
	}

	return apitypes.NewProblemDetails(
		apitypes.CodeCommonInternalError,
		apitypes.LayerTokenRegistry,
		"注册请求被拒绝，原因未知。",
		regErr.Error(),
		500,
		details,
	)
}

// WriteProblemDetails 写入 Problem Details 响应
func WriteProblemDetails(c *gin.Context, problem *apitypes.ProblemDetails) {
	c.Header("Content-Type", "application/problem+json")
	c.JSON(problem.Status, problem)
	c.Abort()
}

// WriteError 写入传输层错误响应（自动转换为 Problem Details）
//
// 处理函数在请求解析阶段（JSON格式、地址编码、分页参数）使用；
// 领域错误走 c.Error(err) 交给 ErrorHandler 统一翻译。
func WriteError(c *gin.Context, code string, userMessage string, detail string, status int, details map[string]interface{}) {
	problem := apitypes.NewProblemDetails(
		code,
		apitypes.LayerAPI,
		userMessage,
		detail,
		status,
		details,
	)
	WriteProblemDetails(c, problem)
}

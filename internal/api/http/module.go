package http

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
)

// initializeGinMode 在模块加载时初始化GIN模式
func initializeGinMode() {
	if os.Getenv("TBR_CLI_MODE") == "true" {
		// CLI模式下设置为Release模式，减少调试输出
		gin.SetMode(gin.ReleaseMode)
		// 重定向GIN的默认输出到空设备，抑制控制台输出
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
	}
}

// Module 返回HTTP服务模块
func Module() fx.Option {
	return fx.Options(
		// 首先初始化GIN模式
		fx.Invoke(initializeGinMode),

		// 提供HTTP服务器实例
		// 注册核心、所有者存储、资产目录由registry模块提供，
		// 缓存与事件总线来自infrastructure模块（值可为nil，服务器内部判空）
		fx.Provide(NewServer),

		// 启动HTTP服务器
		// fx.Invoke强制实例化，确保生命周期钩子被注册
		fx.Invoke(func(server *Server, logger log.Logger) {
			logger.Info("HTTP API服务器已装配")
		}),
	)
}

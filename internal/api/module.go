package api

import (
	"go.uber.org/fx"

	"github.com/deltaswapio/token-bridge-relayer/internal/api/http"
)

// Module 返回API模块选项，使其可以被fx框架注册
// 该函数的作用:
// 1. 创建一个名为"api"的fx模块，用于将所有API相关组件组织在一起
// 2. 确保HTTP服务能够被正确注册和初始化
// 3. WebSocket事件推送作为HTTP服务的升级端点一并装配
func Module() fx.Option {
	return fx.Module("api",
		// 导出HTTP服务模块
		// 这会加载api/http包中定义的所有服务和处理器
		// 包括HTTP服务器的启动、路由注册和请求处理逻辑
		http.Module(),

		// 增加显式调用，确保HTTP服务器被启动
		fx.Invoke(func(server *http.Server) {
			// 通过依赖注入获取HTTP服务器实例
			// fx.Invoke确保该服务器实例会被正确初始化和启动
		}),
	)
}

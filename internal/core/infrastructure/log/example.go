// Package log 示例文件演示了如何使用日志包
package log

import (
	logconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/log"
)

// Example 演示了如何使用日志包
func Example() {
	// 使用默认日志记录器
	Info("这是一条信息日志")
	Warn("这是一条警告日志")
	Error("这是一条错误日志")

	// 使用格式化日志
	Infof("服务 %s 监听于 %s", "relayerd", "127.0.0.1:8080")

	// 带有结构化字段的日志
	With("mint", "So11111111111111111111111111111111111111112", "action", "register").Info("注册请求")

	// 自定义日志记录器 - 使用新的配置系统
	options := &logconfig.LogOptions{
		Level:     "debug",
		FilePath:  "relayer.log",
		ToConsole: true,
	}
	logConfig := logconfig.New(options)

	logger, err := New(logConfig)
	if err != nil {
		Fatal("无法创建日志记录器")
	}

	// 使用自定义日志记录器
	logger.Debug("这是一条调试日志")
	logger.With("requestId", "abc-123").Info("处理请求")

	// 注意：日志记录器资源由DI容器自动管理，无需手动关闭
}

// ExampleFileOutput 演示了如何将日志输出到文件
func ExampleFileOutput() {
	// 创建一个输出到文件的日志记录器
	options := &logconfig.LogOptions{
		Level:     "info",
		FilePath:  "logs/relayer.log",
		ToConsole: false,
	}
	logConfig := logconfig.New(options)

	logger, err := New(logConfig)
	if err != nil {
		Fatal("无法创建文件日志记录器")
	}

	// 使用日志记录器
	logger.Info("应用启动")
	logger.With("module", "api").Info("API服务启动")

	// 注意：日志记录器资源由DI容器自动管理，无需手动关闭
}

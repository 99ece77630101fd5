// Package log 提供中继器的日志级别接口定义
//
// 📊 **日志级别管理 (Log Level Management)**
//
// 本文件定义了中继器的日志级别管理接口，专注于：
// - 日志级别定义：提供标准的日志级别常量和枚举
// - 字符串转换：提供日志级别和字符串的相互转换
// - 默认配置：提供合理的默认日志级别设置
//
// 🔗 **组件关系**
// - Level：被日志记录器、配置系统等模块使用
// - 与Logger：为日志记录器提供级别管理能力
// - 与Config：为配置系统提供日志级别选项
package log

import "github.com/deltaswapio/token-bridge-relayer/pkg/types"

// 兼容别名（迁至 pkg/types）
type LogLevel = types.LogLevel

// 常量别名（向后兼容）
const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)

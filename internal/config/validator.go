package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// ValidateMandatoryConfig 验证必填配置项
//
// 🎯 **配置验证职责**：在启动时验证关键配置项，确保系统正常运行
//
// 📋 **验证范围**：
// - registry.native_mint: 原生资产地址（如配置，必须是合法的32字节base58地址）
// - registry.owner: 引导所有者（如配置，必须是合法的32字节base58主体）
// - api.http_port: HTTP端口（如配置，必须在合法端口范围内）
// - log.level: 日志级别（如配置，必须是已知级别）
// - registry.cache_ttl: 缓存TTL（如配置，必须是合法时长）
//
// 对关键参数采取 fail-fast：非法值直接启动失败，
// 避免配置写了但解析链路失效导致系统静默回退默认值。
//
// 参数：
//   - appConfig: 应用配置
//
// 返回：
//   - error: 验证失败的错误列表
func ValidateMandatoryConfig(appConfig *types.AppConfig) error {
	var errors []error

	if appConfig == nil {
		// 空配置走全默认值，无需验证
		return nil
	}

	// 1. 验证注册表配置
	if appConfig.Registry != nil {
		if appConfig.Registry.NativeMint != nil {
			nativeMint := strings.TrimSpace(*appConfig.Registry.NativeMint)
			if _, err := types.ParseMintAddress(nativeMint); err != nil {
				errors = append(errors, &ValidationError{
					Field:   "registry.native_mint",
					Message: fmt.Sprintf("原生资产地址无效: %q，期望32字节的base58地址，err=%v", nativeMint, err),
				})
			}
		}

		if appConfig.Registry.Owner != nil && strings.TrimSpace(*appConfig.Registry.Owner) != "" {
			owner := strings.TrimSpace(*appConfig.Registry.Owner)
			if _, err := types.ParsePrincipal(owner); err != nil {
				errors = append(errors, &ValidationError{
					Field:   "registry.owner",
					Message: fmt.Sprintf("引导所有者无效: %q，期望32字节的base58主体，err=%v", owner, err),
				})
			}
		}

		if appConfig.Registry.CacheTTL != nil {
			ttlStr := strings.TrimSpace(*appConfig.Registry.CacheTTL)
			if d, err := time.ParseDuration(ttlStr); err != nil || d <= 0 {
				errors = append(errors, &ValidationError{
					Field:   "registry.cache_ttl",
					Message: fmt.Sprintf("缓存TTL格式无效: %q（期望类似 \"1h\"），err=%v", ttlStr, err),
				})
			}
		}

		if appConfig.Registry.TxnMaxRetries != nil && *appConfig.Registry.TxnMaxRetries < 1 {
			errors = append(errors, &ValidationError{
				Field:   "registry.txn_max_retries",
				Message: "txn_max_retries 必须 >= 1",
			})
		}
	}

	// 2. 验证API配置
	if appConfig.API != nil && appConfig.API.HTTPPort != nil {
		port := *appConfig.API.HTTPPort
		if port < 1 || port > 65535 {
			errors = append(errors, &ValidationError{
				Field:   "api.http_port",
				Message: fmt.Sprintf("HTTP端口无效: %d，必须在1-65535范围内", port),
			})
		}
	}

	// 3. 验证日志配置
	if appConfig.Log != nil && appConfig.Log.Level != nil {
		level := strings.ToLower(strings.TrimSpace(*appConfig.Log.Level))
		switch level {
		case "debug", "info", "warn", "error", "panic", "fatal":
			// 合法级别
		default:
			errors = append(errors, &ValidationError{
				Field:   "log.level",
				Message: fmt.Sprintf("日志级别无效: %q，期望 debug|info|warn|error|panic|fatal", level),
			})
		}
	}

	// 4. 验证存储配置
	if appConfig.Storage != nil && appConfig.Storage.DataRoot != nil {
		if strings.TrimSpace(*appConfig.Storage.DataRoot) == "" {
			errors = append(errors, &ValidationError{
				Field:   "storage.data_root",
				Message: "data_root 不能为空字符串，不配置该字段时使用默认数据目录",
			})
		}
	}

	// 如果有错误，返回组合错误
	if len(errors) > 0 {
		return &ValidationErrors{Errors: errors}
	}

	return nil
}

// ValidationErrors 多个验证错误
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	msg := "配置验证失败，发现以下问题：\n"
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

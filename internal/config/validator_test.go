package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// TestValidateMandatoryConfig 测试启动期配置验证
func TestValidateMandatoryConfig(t *testing.T) {
	t.Run("空配置通过验证", func(t *testing.T) {
		assert.NoError(t, ValidateMandatoryConfig(nil))
		assert.NoError(t, ValidateMandatoryConfig(&types.AppConfig{}))
	})

	t.Run("合法的完整配置通过验证", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("prod"),
			API: &types.UserAPIConfig{
				HTTPPort: types.IntPtr(9090),
			},
			Log: &types.UserLogConfig{
				Level: types.StringPtr("debug"),
			},
			Registry: &types.UserRegistryConfig{
				NativeMint: types.StringPtr("So11111111111111111111111111111111111111112"),
				Owner:      types.StringPtr("7Gx3QxJeDkSJaKTCLavLgYjc2qF4TcG4Yg77vpGgHa11"),
				CacheTTL:   types.StringPtr("30m"),
			},
		}
		assert.NoError(t, ValidateMandatoryConfig(cfg))
	})

	t.Run("非法的原生资产地址被拒绝", func(t *testing.T) {
		cfg := &types.AppConfig{
			Registry: &types.UserRegistryConfig{
				NativeMint: types.StringPtr("not-base58-0OIl"),
			},
		}
		err := ValidateMandatoryConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registry.native_mint")
	})

	t.Run("非法的所有者主体被拒绝", func(t *testing.T) {
		cfg := &types.AppConfig{
			Registry: &types.UserRegistryConfig{
				Owner: types.StringPtr("abc"),
			},
		}
		err := ValidateMandatoryConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registry.owner")
	})

	t.Run("空白所有者视为未配置", func(t *testing.T) {
		cfg := &types.AppConfig{
			Registry: &types.UserRegistryConfig{
				Owner: types.StringPtr("  "),
			},
		}
		assert.NoError(t, ValidateMandatoryConfig(cfg))
	})

	t.Run("非法的缓存TTL被拒绝", func(t *testing.T) {
		cfg := &types.AppConfig{
			Registry: &types.UserRegistryConfig{
				CacheTTL: types.StringPtr("whenever"),
			},
		}
		err := ValidateMandatoryConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registry.cache_ttl")
	})

	t.Run("非法的端口被拒绝", func(t *testing.T) {
		cfg := &types.AppConfig{
			API: &types.UserAPIConfig{
				HTTPPort: types.IntPtr(70000),
			},
		}
		err := ValidateMandatoryConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api.http_port")
	})

	t.Run("非法的日志级别被拒绝", func(t *testing.T) {
		cfg := &types.AppConfig{
			Log: &types.UserLogConfig{
				Level: types.StringPtr("verbose"),
			},
		}
		err := ValidateMandatoryConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.level")
	})

	t.Run("多个错误同时上报", func(t *testing.T) {
		cfg := &types.AppConfig{
			API: &types.UserAPIConfig{
				HTTPPort: types.IntPtr(0),
			},
			Registry: &types.UserRegistryConfig{
				Owner:         types.StringPtr("abc"),
				TxnMaxRetries: types.IntPtr(0),
			},
		}
		err := ValidateMandatoryConfig(cfg)
		require.Error(t, err)

		var validationErrors *ValidationErrors
		require.ErrorAs(t, err, &validationErrors)
		assert.Len(t, validationErrors.Errors, 3)
	})
}

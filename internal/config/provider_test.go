package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// TestGetEnvironment 测试 GetEnvironment() 方法
func TestGetEnvironment(t *testing.T) {
	t.Run("显式配置 dev", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("dev"),
		}
		provider := NewProvider(cfg)
		env := provider.GetEnvironment()
		assert.Equal(t, "dev", env)
	})

	t.Run("显式配置 test", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("test"),
		}
		provider := NewProvider(cfg)
		env := provider.GetEnvironment()
		assert.Equal(t, "test", env)
	})

	t.Run("显式配置 prod", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("prod"),
		}
		provider := NewProvider(cfg)
		env := provider.GetEnvironment()
		assert.Equal(t, "prod", env)
	})

	t.Run("未配置时默认为 dev", func(t *testing.T) {
		cfg := &types.AppConfig{}
		provider := NewProvider(cfg)
		env := provider.GetEnvironment()
		assert.Equal(t, "dev", env, "管理面工具未配置环境时默认 dev")
	})

	t.Run("配置为 nil 时默认为 dev", func(t *testing.T) {
		provider := NewProvider(nil)
		env := provider.GetEnvironment()
		assert.Equal(t, "dev", env)
	})
}

// TestGetInstanceDataDir 测试环境隔离的数据目录
func TestGetInstanceDataDir(t *testing.T) {
	t.Run("默认数据目录以环境名结尾", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("dev"),
		}
		provider := NewProvider(cfg)
		dir := provider.GetInstanceDataDir()
		assert.True(t, strings.HasSuffix(dir, filepath.Join("data", "dev")),
			"数据目录应为 {data_root}/{environment}，实际: %s", dir)
	})

	t.Run("用户配置的data_root生效", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("prod"),
			Storage: &types.UserStorageConfig{
				DataRoot: types.StringPtr("/var/lib/relayer"),
			},
		}
		provider := NewProvider(cfg)
		dir := provider.GetInstanceDataDir()
		assert.Equal(t, filepath.Join("/var/lib/relayer", "prod"), dir)
	})

	t.Run("不同环境得到不同目录", func(t *testing.T) {
		devProvider := NewProvider(&types.AppConfig{Environment: types.StringPtr("dev")})
		prodProvider := NewProvider(&types.AppConfig{Environment: types.StringPtr("prod")})
		assert.NotEqual(t, devProvider.GetInstanceDataDir(), prodProvider.GetInstanceDataDir(),
			"dev与prod的数据目录必须隔离")
	})
}

// TestGetBadger 测试Badger配置派生
func TestGetBadger(t *testing.T) {
	t.Run("Badger目录位于实例数据目录之下", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("test"),
			Storage: &types.UserStorageConfig{
				DataRoot: types.StringPtr("/tmp/tbr-data"),
			},
		}
		provider := NewProvider(cfg)
		badgerOptions := provider.GetBadger()
		require.NotNil(t, badgerOptions)
		assert.Equal(t, filepath.Join("/tmp/tbr-data", "test", "badger"), badgerOptions.Path)
	})

	t.Run("默认开启同步写入", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{})
		badgerOptions := provider.GetBadger()
		require.NotNil(t, badgerOptions)
		assert.True(t, badgerOptions.SyncWrites, "注册记录是授权依据，默认必须同步落盘")
	})
}

// TestGetRegistry 测试注册表配置
func TestGetRegistry(t *testing.T) {
	t.Run("默认配置", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{})
		registryOptions := provider.GetRegistry()
		require.NotNil(t, registryOptions)
		assert.Equal(t, "So11111111111111111111111111111111111111112", registryOptions.NativeMint)
		assert.Empty(t, registryOptions.Owner)
		assert.True(t, registryOptions.CacheEnabled)
		assert.Equal(t, time.Hour, registryOptions.CacheTTL)
		assert.Equal(t, 3, registryOptions.TxnMaxRetries)
	})

	t.Run("用户配置覆盖默认值", func(t *testing.T) {
		cfg := &types.AppConfig{
			Registry: &types.UserRegistryConfig{
				Owner:    types.StringPtr("7Gx3QxJeDkSJaKTCLavLgYjc2qF4TcG4Yg77vpGgHa11"),
				CacheTTL: types.StringPtr("10m"),
			},
		}
		provider := NewProvider(cfg)
		registryOptions := provider.GetRegistry()
		require.NotNil(t, registryOptions)
		assert.Equal(t, "7Gx3QxJeDkSJaKTCLavLgYjc2qF4TcG4Yg77vpGgHa11", registryOptions.Owner)
		assert.Equal(t, 10*time.Minute, registryOptions.CacheTTL)
		// 未覆盖的字段保持默认
		assert.Equal(t, "So11111111111111111111111111111111111111112", registryOptions.NativeMint)
	})
}

// TestProviderSubConfigs 测试各子配置的可用性
func TestProviderSubConfigs(t *testing.T) {
	provider := NewProvider(&types.AppConfig{})

	t.Run("API配置", func(t *testing.T) {
		apiOptions := provider.GetAPI()
		require.NotNil(t, apiOptions)
		assert.True(t, apiOptions.HTTP.Enabled)
		assert.Equal(t, "127.0.0.1", apiOptions.HTTP.Host)
		assert.Equal(t, 8080, apiOptions.HTTP.Port)
	})

	t.Run("日志配置", func(t *testing.T) {
		logOptions := provider.GetLog()
		require.NotNil(t, logOptions)
		assert.Equal(t, "info", logOptions.Level)
	})

	t.Run("事件配置", func(t *testing.T) {
		eventOptions := provider.GetEvent()
		require.NotNil(t, eventOptions)
		assert.True(t, eventOptions.Enabled)
	})

	t.Run("内存缓存配置", func(t *testing.T) {
		memoryOptions := provider.GetMemory()
		require.NotNil(t, memoryOptions)
		assert.Greater(t, memoryOptions.MaxEntries, 0)
	})
}

package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configtypes "github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// TestNew 测试配置创建
func TestNew(t *testing.T) {
	t.Run("创建默认配置", func(t *testing.T) {
		config := New(nil)
		require.NotNil(t, config)

		assert.Equal(t, defaultNativeMint, config.GetNativeMint())
		assert.Empty(t, config.GetOwner())
		assert.True(t, config.IsCacheEnabled())
		assert.Equal(t, defaultCacheTTL, config.GetCacheTTL())
		assert.Equal(t, defaultTxnMaxRetries, config.GetTxnMaxRetries())
	})

	t.Run("用户配置覆盖默认值", func(t *testing.T) {
		userConfig := &configtypes.UserRegistryConfig{
			Owner:         configtypes.StringPtr("4q5PCzV1pLt3qCc4eGgaPzCYvyQ2DBDkbsMLRCdyyuKf"),
			CacheEnabled:  configtypes.BoolPtr(false),
			CacheTTL:      configtypes.StringPtr("30m"),
			TxnMaxRetries: configtypes.IntPtr(5),
		}
		config := New(userConfig)

		assert.Equal(t, "4q5PCzV1pLt3qCc4eGgaPzCYvyQ2DBDkbsMLRCdyyuKf", config.GetOwner())
		assert.False(t, config.IsCacheEnabled())
		assert.Equal(t, 30*time.Minute, config.GetCacheTTL())
		assert.Equal(t, 5, config.GetTxnMaxRetries())
		// 未设置的字段保持默认值
		assert.Equal(t, defaultNativeMint, config.GetNativeMint())
	})

	t.Run("非法TTL字符串保持默认值", func(t *testing.T) {
		userConfig := &configtypes.UserRegistryConfig{
			CacheTTL: configtypes.StringPtr("不是时长"),
		}
		config := New(userConfig)
		assert.Equal(t, defaultCacheTTL, config.GetCacheTTL())
	})

	t.Run("非正的重试次数保持默认值", func(t *testing.T) {
		userConfig := &configtypes.UserRegistryConfig{
			TxnMaxRetries: configtypes.IntPtr(0),
		}
		config := New(userConfig)
		assert.Equal(t, defaultTxnMaxRetries, config.GetTxnMaxRetries())
	})
}

// TestDefaultValues 测试默认值的合理性
func TestDefaultValues(t *testing.T) {
	assert.Equal(t, "So11111111111111111111111111111111111111112", defaultNativeMint)
	assert.Equal(t, time.Hour, defaultCacheTTL)
	assert.Equal(t, 3, defaultTxnMaxRetries)
	assert.True(t, defaultCacheEnabled)
}

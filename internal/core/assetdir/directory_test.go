package assetdir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	registryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// wrappedSOLMint 链上公认的wrapped SOL Mint地址
const wrappedSOLMint = "So11111111111111111111111111111111111111112"

// TestDirectoryDefaultNativeMint 测试默认配置下的原生资产判定
func TestDirectoryDefaultNativeMint(t *testing.T) {
	directory, err := New(registryconfig.New(nil))
	require.NoError(t, err)

	native, err := types.ParseMintAddress(wrappedSOLMint)
	require.NoError(t, err)

	assert.True(t, directory.IsNativeAsset(native))
	assert.Equal(t, native, directory.NativeMint())

	// 任意其他Mint都不是原生资产
	var other types.MintAddress
	other[0] = 0x42
	assert.False(t, directory.IsNativeAsset(other))

	var zero types.MintAddress
	assert.False(t, directory.IsNativeAsset(zero))
}

// TestDirectoryCustomNativeMint 测试自定义原生Mint配置
func TestDirectoryCustomNativeMint(t *testing.T) {
	var custom types.MintAddress
	custom[0] = 0x99

	directory, err := New(registryconfig.NewFromOptions(&registryconfig.RegistryOptions{
		NativeMint: custom.String(),
	}))
	require.NoError(t, err)

	assert.True(t, directory.IsNativeAsset(custom))
	assert.Equal(t, custom, directory.NativeMint())

	native, err := types.ParseMintAddress(wrappedSOLMint)
	require.NoError(t, err)
	assert.False(t, directory.IsNativeAsset(native), "自定义配置下wrapped SOL不再是原生资产")
}

// TestDirectoryRejectsInvalidMint 测试非法配置直接失败
func TestDirectoryRejectsInvalidMint(t *testing.T) {
	_, err := New(registryconfig.NewFromOptions(&registryconfig.RegistryOptions{
		NativeMint: "definitely-not-base58-!!",
	}))
	assert.Error(t, err)

	// 长度不足32字节的合法base58同样被拒绝
	_, err = New(registryconfig.NewFromOptions(&registryconfig.RegistryOptions{
		NativeMint: "abc",
	}))
	assert.Error(t, err)
}

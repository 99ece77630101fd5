// Package assetdir 提供资产目录服务
//
// 🎯 **资产身份判定 (Asset Directory)**
//
// 提供资产身份的只读判定，注册核心用它区分原生资产（wrapped SOL）
// 与普通代币。原生资产的Mint地址来自注册表配置，启动时解析一次。
package assetdir

import (
	"fmt"

	registryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/registry"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// Directory 资产目录
type Directory struct {
	nativeMint types.MintAddress
}

// 编译期接口断言
var _ registry.AssetDirectory = (*Directory)(nil)

// New 创建资产目录
// 配置中的原生Mint地址非法时直接失败，原生资产判定参与注册校验，
// 不允许带着错误的地址启动
func New(cfg *registryconfig.Config) (*Directory, error) {
	mint, err := types.ParseMintAddress(cfg.GetNativeMint())
	if err != nil {
		return nil, fmt.Errorf("解析原生资产Mint地址失败: %w", err)
	}

	return &Directory{
		nativeMint: mint,
	}, nil
}

// IsNativeAsset 判断指定Mint是否为原生资产
func (d *Directory) IsNativeAsset(mint types.MintAddress) bool {
	return mint == d.nativeMint
}

// NativeMint 返回原生资产的Mint地址
func (d *Directory) NativeMint() types.MintAddress {
	return d.nativeMint
}

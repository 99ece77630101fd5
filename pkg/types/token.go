// Package types 定义代币注册表的核心数据类型
package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
)

// MintAddressLength Mint地址的固定字节长度（Ed25519公钥）
const MintAddressLength = 32

// PrincipalLength 权限主体标识的固定字节长度（Ed25519公钥）
const PrincipalLength = 32

// RegisteredTokenSize 注册记录的持久化字节长度
// 布局（小端序，与链上账户数据一致）：
//
//	swap_rate:              8 字节
//	max_native_swap_amount: 8 字节
//	is_registered:          1 字节（0x00 / 0x01）
const RegisteredTokenSize = 17

// MintAddress 跨链资产的唯一标识（SPL Mint公钥）
//
// 注册表以Mint地址为键，文本形式使用base58编码（Solana地址格式）。
type MintAddress [MintAddressLength]byte

// ParseMintAddress 解析base58编码的Mint地址
func ParseMintAddress(s string) (MintAddress, error) {
	var mint MintAddress
	raw, err := base58.Decode(s)
	if err != nil {
		return mint, fmt.Errorf("解析Mint地址失败: %w", err)
	}
	if len(raw) != MintAddressLength {
		return mint, fmt.Errorf("Mint地址长度无效: got %d, want %d", len(raw), MintAddressLength)
	}
	copy(mint[:], raw)
	return mint, nil
}

// MintAddressFromBytes 从原始字节构造Mint地址
func MintAddressFromBytes(raw []byte) (MintAddress, error) {
	var mint MintAddress
	if len(raw) != MintAddressLength {
		return mint, fmt.Errorf("Mint地址长度无效: got %d, want %d", len(raw), MintAddressLength)
	}
	copy(mint[:], raw)
	return mint, nil
}

// String 返回base58编码的文本形式
func (m MintAddress) String() string {
	return base58.Encode(m[:])
}

// Bytes 返回原始32字节
func (m MintAddress) Bytes() []byte {
	out := make([]byte, MintAddressLength)
	copy(out, m[:])
	return out
}

// IsZero 判断是否为零值地址
func (m MintAddress) IsZero() bool {
	var zero MintAddress
	return m == zero
}

// Principal 权限主体标识（被授权执行注册操作的所有者公钥）
type Principal [PrincipalLength]byte

// ParsePrincipal 解析base58编码的权限主体标识
func ParsePrincipal(s string) (Principal, error) {
	var p Principal
	raw, err := base58.Decode(s)
	if err != nil {
		return p, fmt.Errorf("解析权限主体失败: %w", err)
	}
	if len(raw) != PrincipalLength {
		return p, fmt.Errorf("权限主体长度无效: got %d, want %d", len(raw), PrincipalLength)
	}
	copy(p[:], raw)
	return p, nil
}

// PrincipalFromBytes 从原始字节构造权限主体标识
func PrincipalFromBytes(raw []byte) (Principal, error) {
	var p Principal
	if len(raw) != PrincipalLength {
		return p, fmt.Errorf("权限主体长度无效: got %d, want %d", len(raw), PrincipalLength)
	}
	copy(p[:], raw)
	return p, nil
}

// String 返回base58编码的文本形式
func (p Principal) String() string {
	return base58.Encode(p[:])
}

// Bytes 返回原始32字节
func (p Principal) Bytes() []byte {
	out := make([]byte, PrincipalLength)
	copy(out, p[:])
	return out
}

// IsZero 判断是否为零值主体
func (p Principal) IsZero() bool {
	var zero Principal
	return p == zero
}

// RegisteredToken 单个资产的注册配置记录
//
// 下游费用计算与转账执行只读取该记录，唯一的写路径是注册操作。
// 记录一经注册即不可变：本核心不提供更新或注销路径。
type RegisteredToken struct {
	// SwapRate 兑换汇率，注册成功后必须严格大于0
	SwapRate uint64 `json:"swap_rate"`

	// MaxNativeSwapAmount 最大原生币兑换额度
	// 原生资产（wrapped SOL）必须为0
	MaxNativeSwapAmount uint64 `json:"max_native_swap_amount"`

	// IsRegistered 注册标志，首次注册成功后置true且不再回退
	IsRegistered bool `json:"is_registered"`
}

// Marshal 序列化为固定17字节的持久化布局
func (t *RegisteredToken) Marshal() []byte {
	buf := make([]byte, RegisteredTokenSize)
	binary.LittleEndian.PutUint64(buf[0:8], t.SwapRate)
	binary.LittleEndian.PutUint64(buf[8:16], t.MaxNativeSwapAmount)
	if t.IsRegistered {
		buf[16] = 0x01
	}
	return buf
}

// UnmarshalRegisteredToken 从持久化字节还原注册记录
//
// 严格校验长度与布尔字节，拒绝任何截断或脏数据。
func UnmarshalRegisteredToken(data []byte) (*RegisteredToken, error) {
	if len(data) != RegisteredTokenSize {
		return nil, fmt.Errorf("注册记录长度无效: got %d, want %d", len(data), RegisteredTokenSize)
	}
	switch data[16] {
	case 0x00, 0x01:
		// 合法布尔字节
	default:
		return nil, fmt.Errorf("注册记录标志字节无效: 0x%02x", data[16])
	}
	return &RegisteredToken{
		SwapRate:            binary.LittleEndian.Uint64(data[0:8]),
		MaxNativeSwapAmount: binary.LittleEndian.Uint64(data[8:16]),
		IsRegistered:        data[16] == 0x01,
	}, nil
}

// Equal 按值比较两条注册记录
func (t *RegisteredToken) Equal(other *RegisteredToken) bool {
	if t == nil || other == nil {
		return t == other
	}
	return bytes.Equal(t.Marshal(), other.Marshal())
}

// TokenListEntry 注册记录的列表条目，携带所属的Mint地址
type TokenListEntry struct {
	Mint  MintAddress
	Token RegisteredToken
}

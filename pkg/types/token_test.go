package types

import (
	"fmt"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wrapped SOL的Mint地址，注册表中的原生资产
const nativeMintBase58 = "So11111111111111111111111111111111111111112"

// 测试Mint地址解析与编码
func TestParseMintAddress(t *testing.T) {
	// 1. 合法地址往返
	mint, err := ParseMintAddress(nativeMintBase58)
	require.NoError(t, err)
	assert.Equal(t, nativeMintBase58, mint.String())
	assert.Len(t, mint.Bytes(), MintAddressLength)
	assert.False(t, mint.IsZero())

	// 2. 非法base58字符
	_, err = ParseMintAddress("0OIl-not-base58")
	assert.Error(t, err)

	// 3. 长度不足（3字节数据的base58编码）
	short := base58.Encode([]byte{1, 2, 3})
	_, err = ParseMintAddress(short)
	assert.Error(t, err)

	// 4. 原始字节构造
	raw := mint.Bytes()
	mint2, err := MintAddressFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, mint, mint2)

	_, err = MintAddressFromBytes(raw[:16])
	assert.Error(t, err)
}

// 测试权限主体解析
func TestParsePrincipal(t *testing.T) {
	raw := make([]byte, PrincipalLength)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	encoded := base58.Encode(raw)

	p, err := ParsePrincipal(encoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, p.String())
	assert.Equal(t, raw, p.Bytes())

	_, err = ParsePrincipal(base58.Encode([]byte{0xff}))
	assert.Error(t, err)

	var zero Principal
	assert.True(t, zero.IsZero())
	assert.False(t, p.IsZero())
}

// 测试注册记录的固定布局编解码
func TestRegisteredTokenCodec(t *testing.T) {
	record := &RegisteredToken{
		SwapRate:            100,
		MaxNativeSwapAmount: 0,
		IsRegistered:        true,
	}

	data := record.Marshal()
	require.Len(t, data, RegisteredTokenSize)

	// 小端序布局校验：swap_rate=100 在首字节
	assert.Equal(t, byte(100), data[0])
	assert.Equal(t, byte(0x01), data[16])

	decoded, err := UnmarshalRegisteredToken(data)
	require.NoError(t, err)
	assert.True(t, record.Equal(decoded))

	// 截断数据被拒绝
	_, err = UnmarshalRegisteredToken(data[:16])
	assert.Error(t, err)

	// 脏布尔字节被拒绝
	dirty := record.Marshal()
	dirty[16] = 0x02
	_, err = UnmarshalRegisteredToken(dirty)
	assert.Error(t, err)

	// 未注册记录的标志字节为0
	empty := &RegisteredToken{}
	assert.Equal(t, byte(0x00), empty.Marshal()[16])
}

// 测试注册错误的分类
func TestRegistrationErrorKinds(t *testing.T) {
	mint, err := ParseMintAddress(nativeMintBase58)
	require.NoError(t, err)

	cases := []struct {
		reason        RegistrationRejectReason
		authorization bool
		stateConflict bool
		validation    bool
	}{
		{RegistrationRejectOwnerOnly, true, false, false},
		{RegistrationRejectAlreadyRegistered, false, true, false},
		{RegistrationRejectZeroSwapRate, false, false, true},
		{RegistrationRejectNativeSwapNotAllowed, false, false, true},
	}

	for _, tc := range cases {
		regErr := &RegistrationError{Reason: tc.reason, Mint: mint}
		assert.Equal(t, tc.authorization, regErr.IsAuthorizationError(), regErr.Error())
		assert.Equal(t, tc.stateConflict, regErr.IsStateConflict(), regErr.Error())
		assert.Equal(t, tc.validation, regErr.IsValidationError(), regErr.Error())
		assert.NotEmpty(t, regErr.Error())
	}
}

// 测试包装链中的注册错误识别
func TestIsRegistrationError(t *testing.T) {
	regErr := &RegistrationError{Reason: RegistrationRejectZeroSwapRate}

	// 直接识别
	got, ok := IsRegistrationError(regErr)
	require.True(t, ok)
	assert.Equal(t, regErr, got)

	// 经过%w包装后仍可识别
	wrapped := fmt.Errorf("注册失败: %w", regErr)
	got, ok = IsRegistrationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, RegistrationRejectZeroSwapRate, got.Reason)

	// 普通错误不识别
	_, ok = IsRegistrationError(fmt.Errorf("其他错误"))
	assert.False(t, ok)

	_, ok = IsRegistrationError(nil)
	assert.False(t, ok)
}

package repositories

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	badgerconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/badger"
	badgerstore "github.com/deltaswapio/token-bridge-relayer/internal/core/infrastructure/storage/badger"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string)                          {}
func (m *mockLogger) Debugf(format string, args ...interface{}) {}
func (m *mockLogger) Info(msg string)                           {}
func (m *mockLogger) Infof(format string, args ...interface{})  {}
func (m *mockLogger) Warn(msg string)                           {}
func (m *mockLogger) Warnf(format string, args ...interface{})  {}
func (m *mockLogger) Error(msg string)                          {}
func (m *mockLogger) Errorf(format string, args ...interface{}) {}
func (m *mockLogger) Fatal(msg string)                          {}
func (m *mockLogger) Fatalf(format string, args ...interface{}) {}
func (m *mockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *mockLogger) Sync() error                               { return nil }
func (m *mockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// setupTestBadgerStore 创建测试用的权威存储
func setupTestBadgerStore(t *testing.T) storage.BadgerStore {
	tempDir, err := os.MkdirTemp("", "repo-test")
	require.NoError(t, err)

	options := &badgerconfig.BadgerOptions{
		Path:                 tempDir,
		SyncWrites:           false,
		MemTableSize:         1 << 20, // 1MB
		EnableAutoCompaction: false,
	}
	store := badgerstore.New(badgerconfig.NewFromOptions(options), &mockLogger{})
	require.NotNil(t, store)

	t.Cleanup(func() {
		_ = store.Close()
		_ = os.RemoveAll(tempDir)
	})

	return store
}

// setupTokenStorage 创建测试用的注册记录仓储
func setupTokenStorage(t *testing.T) *TokenStorage {
	ts, err := NewTokenStorage(setupTestBadgerStore(t), &mockLogger{})
	require.NoError(t, err)
	return ts
}

// testMint 构造一个测试Mint地址，首字节为标识符
func testMint(id byte) types.MintAddress {
	var mint types.MintAddress
	mint[0] = id
	for i := 1; i < len(mint); i++ {
		mint[i] = 0xAB
	}
	return mint
}

// TestTokenKeyRoundTrip 测试存储键的构造与还原
func TestTokenKeyRoundTrip(t *testing.T) {
	mint := testMint(0x01)

	key := formatTokenKey(mint)
	assert.Len(t, key, len(TokenKeyPrefix)+types.MintAddressLength)
	assert.Equal(t, []byte(TokenKeyPrefix), key[:len(TokenKeyPrefix)])

	parsed, err := parseTokenKey(key)
	require.NoError(t, err)
	assert.Equal(t, mint, parsed)

	// 截断的键应被拒绝
	_, err = parseTokenKey(key[:len(key)-1])
	assert.Error(t, err)
}

// TestCreateAndGetToken 测试注册记录的创建与读取
func TestCreateAndGetToken(t *testing.T) {
	ts := setupTokenStorage(t)
	ctx := context.Background()
	mint := testMint(0x02)

	t.Run("不存在的记录返回nil", func(t *testing.T) {
		token, err := ts.GetToken(ctx, mint)
		require.NoError(t, err)
		assert.Nil(t, token)

		exists, err := ts.HasToken(ctx, mint)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("创建后可以读取", func(t *testing.T) {
		record := &types.RegisteredToken{
			SwapRate:            100,
			MaxNativeSwapAmount: 50,
			IsRegistered:        true,
		}
		require.NoError(t, ts.CreateToken(ctx, mint, record))

		got, err := ts.GetToken(ctx, mint)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, record.Equal(got))

		exists, err := ts.HasToken(ctx, mint)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("nil记录被拒绝", func(t *testing.T) {
		err := ts.CreateToken(ctx, testMint(0x03), nil)
		assert.Error(t, err)
	})
}

// TestCreateTokenRejectsExisting 测试重复创建被拒绝且原记录不变
func TestCreateTokenRejectsExisting(t *testing.T) {
	ts := setupTokenStorage(t)
	ctx := context.Background()
	mint := testMint(0x04)

	original := &types.RegisteredToken{SwapRate: 100, IsRegistered: true}
	require.NoError(t, ts.CreateToken(ctx, mint, original))

	// 重复创建必须返回哨兵错误
	err := ts.CreateToken(ctx, mint, &types.RegisteredToken{SwapRate: 50, IsRegistered: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTokenExists)

	// 已有记录保持原值
	got, err := ts.GetToken(ctx, mint)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, original.Equal(got), "拒绝路径不应产生任何写入")
}

// TestListTokens 测试注册记录的全量枚举
func TestListTokens(t *testing.T) {
	ts := setupTokenStorage(t)
	ctx := context.Background()

	t.Run("空注册表返回空列表", func(t *testing.T) {
		entries, err := ts.ListTokens(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("返回全部已创建的记录", func(t *testing.T) {
		created := map[types.MintAddress]*types.RegisteredToken{
			testMint(0x10): {SwapRate: 100, IsRegistered: true},
			testMint(0x11): {SwapRate: 200, MaxNativeSwapAmount: 10, IsRegistered: true},
			testMint(0x12): {SwapRate: 300, IsRegistered: true},
		}
		for mint, token := range created {
			require.NoError(t, ts.CreateToken(ctx, mint, token))
		}

		// 其他命名空间的键不应被扫描到
		require.NoError(t, setupOtherKey(ctx, ts))

		entries, err := ts.ListTokens(ctx)
		require.NoError(t, err)
		require.Len(t, entries, len(created))

		for _, entry := range entries {
			expected, ok := created[entry.Mint]
			require.True(t, ok, "返回了未创建的Mint: %s", entry.Mint)
			assert.True(t, expected.Equal(&entry.Token))
		}
	})
}

// setupOtherKey 在代币命名空间之外写入一个键
func setupOtherKey(ctx context.Context, ts *TokenStorage) error {
	return ts.storage.Set(ctx, []byte(SenderConfigKey), make([]byte, types.PrincipalLength))
}

// TestConcurrentCreateSingleWinner 测试并发创建同一Mint时只有一个赢家
func TestConcurrentCreateSingleWinner(t *testing.T) {
	ts := setupTokenStorage(t)
	ctx := context.Background()
	mint := testMint(0x20)

	rates := []uint64{111, 222}
	errs := make([]error, len(rates))

	var wg sync.WaitGroup
	for i, rate := range rates {
		wg.Add(1)
		go func(idx int, swapRate uint64) {
			defer wg.Done()
			errs[idx] = ts.CreateToken(ctx, mint, &types.RegisteredToken{
				SwapRate:     swapRate,
				IsRegistered: true,
			})
		}(i, rate)
	}
	wg.Wait()

	// 恰好一个成功，另一个因占用或事务冲突失败
	var winnerRate uint64
	successes := 0
	for i, err := range errs {
		if err == nil {
			successes++
			winnerRate = rates[i]
			continue
		}
		isExpected := errors.Is(err, types.ErrTokenExists) || errors.Is(err, storage.ErrTxnConflict)
		assert.True(t, isExpected, "意外的失败原因: %v", err)
	}
	require.Equal(t, 1, successes, "并发创建只允许一个赢家")

	// 落盘的记录必须来自赢家
	got, err := ts.GetToken(ctx, mint)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, winnerRate, got.SwapRate)
	assert.True(t, got.IsRegistered)
}

package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	badgerconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/badger"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	interfaces "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 模拟Logger接口
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

// 初始化测试环境
func setupTestStore(t *testing.T) (*Store, string, func()) {
	// 创建临时测试目录
	tempDir, err := os.MkdirTemp("", "badger-test")
	require.NoError(t, err)

	// 创建测试配置
	options := &badgerconfig.BadgerOptions{
		Path:                 tempDir,
		SyncWrites:           false,
		MemTableSize:         1 << 20, // 1MB
		EnableAutoCompaction: false,
	}
	cfg := badgerconfig.NewFromOptions(options)

	// 创建测试日志
	logger := &mockLogger{}

	// 创建存储实例
	store := New(cfg, logger)
	require.NotNil(t, store)

	// 返回清理函数
	cleanup := func() {
		store.Close()
		os.RemoveAll(tempDir)
	}

	return store.(*Store), tempDir, cleanup
}

// 测试基本的键值操作
func TestBasicKeyValueOperations(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// 测试键值
	key := []byte("test-key")
	value := []byte("test-value")

	// 1. 测试不存在的键
	exists, err := store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.False(t, exists)

	val, err := store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, val)

	// 2. 测试设置键值
	err = store.Set(ctx, key, value)
	assert.NoError(t, err)

	// 3. 测试键存在
	exists, err = store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.True(t, exists)

	// 4. 测试获取值
	val, err = store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, value, val)

	// 5. 测试更新值
	newValue := []byte("updated-value")
	err = store.Set(ctx, key, newValue)
	assert.NoError(t, err)

	val, err = store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, newValue, val)

	// 6. 测试删除键
	err = store.Delete(ctx, key)
	assert.NoError(t, err)

	exists, err = store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.False(t, exists)
}

// 测试前缀扫描
func TestPrefixScan(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// 插入测试数据：注册记录与配置项混合存放
	keyValues := map[string][]byte{
		"mint:alpha":    []byte("record-alpha"),
		"mint:bravo":    []byte("record-bravo"),
		"mint:charlie":  []byte("record-charlie"),
		"config:sender": []byte("owner-principal"),
	}

	for k, v := range keyValues {
		require.NoError(t, store.Set(ctx, []byte(k), v))
	}

	// 前缀扫描只应返回注册记录
	records, err := store.PrefixScan(ctx, []byte("mint:"))
	assert.NoError(t, err)
	assert.Equal(t, 3, len(records))
	assert.Equal(t, []byte("record-alpha"), records["mint:alpha"])
	assert.Equal(t, []byte("record-bravo"), records["mint:bravo"])
	assert.Equal(t, []byte("record-charlie"), records["mint:charlie"])
	assert.Nil(t, records["config:sender"])

	// 空前缀返回全部键值
	all, err := store.PrefixScan(ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(all))
}

// 测试事务操作
func TestTransaction(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// 1. 测试事务提交
	err := store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		// 写入数据
		if err := tx.Set([]byte("tx-key1"), []byte("tx-value1")); err != nil {
			return err
		}
		if err := tx.Set([]byte("tx-key2"), []byte("tx-value2")); err != nil {
			return err
		}
		return nil
	})
	assert.NoError(t, err)

	// 验证提交的数据
	val1, err := store.Get(ctx, []byte("tx-key1"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("tx-value1"), val1)

	val2, err := store.Get(ctx, []byte("tx-key2"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("tx-value2"), val2)

	// 2. 测试事务回滚
	err = store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		// 写入数据
		if err := tx.Set([]byte("tx-key3"), []byte("tx-value3")); err != nil {
			return err
		}
		// 故意返回错误以触发回滚
		return fmt.Errorf("事务回滚测试")
	})
	assert.Error(t, err)

	// 验证回滚的数据不存在
	exists, err := store.Exists(ctx, []byte("tx-key3"))
	assert.NoError(t, err)
	assert.False(t, exists)

	// 3. 测试事务内读写组合：检查并写入
	err = store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		exists, err := tx.Exists([]byte("tx-key1"))
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("记录已存在")
		}
		return tx.Set([]byte("tx-key1"), []byte("overwritten"))
	})
	assert.Error(t, err)

	// 已存在的值未被覆盖
	val1, err = store.Get(ctx, []byte("tx-key1"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("tx-value1"), val1)
}

// 测试事务冲突返回ErrTxnConflict
// 模拟两个并发注册同一记录的场景：事务读取某键后，
// 另一提交修改了该键，原事务提交时必须返回可识别的冲突错误
func TestTransactionConflict(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	key := []byte("mint:contended")

	require.NoError(t, store.Set(ctx, key, []byte("v0")))

	err := store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		// 事务内读取该键，建立读依赖
		if _, err := tx.Get(key); err != nil {
			return err
		}

		// 另一个独立提交修改了同一个键
		if err := store.Set(ctx, key, []byte("v1")); err != nil {
			return err
		}

		// 本事务再写入，提交时应检测到冲突
		return tx.Set(key, []byte("v2"))
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrTxnConflict)

	// 胜出的写入保持不变
	val, err := store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
}

// 测试重新打开后数据仍然存在
// 注册表是授权依据，重启后必须完整保留
func TestPersistenceAcrossReopen(t *testing.T) {
	store, tempDir, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, []byte("mint:persisted"), []byte("record")))

	// 正常关闭
	require.NoError(t, store.Close())

	// 重新打开同一目录
	options := &badgerconfig.BadgerOptions{
		Path:                 tempDir,
		SyncWrites:           false,
		MemTableSize:         1 << 20,
		EnableAutoCompaction: false,
	}
	reopened := New(badgerconfig.NewFromOptions(options), &mockLogger{})
	require.NotNil(t, reopened)
	defer reopened.Close()

	val, err := reopened.Get(ctx, []byte("mint:persisted"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("record"), val)
}

// 测试运行标记的生命周期
// 打开期间存在BADGER_RUNNING标记，正常关闭后清除
func TestRunningMarkerLifecycle(t *testing.T) {
	store, tempDir, cleanup := setupTestStore(t)
	defer cleanup()

	markerPath := filepath.Join(tempDir, "BADGER_RUNNING")

	_, err := os.Stat(markerPath)
	assert.NoError(t, err, "打开期间应存在运行标记")

	require.NoError(t, store.Close())

	_, err = os.Stat(markerPath)
	assert.True(t, os.IsNotExist(err), "正常关闭后运行标记应被清除")
}

// 测试显式内存模式
func TestMemoryOnlyMode(t *testing.T) {
	t.Setenv("TBR_MEMORY_ONLY_MODE", "true")

	tempDir, err := os.MkdirTemp("", "badger-mem-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	options := &badgerconfig.BadgerOptions{
		Path:                 tempDir,
		SyncWrites:           false,
		MemTableSize:         1 << 20,
		EnableAutoCompaction: false,
	}
	store := New(badgerconfig.NewFromOptions(options), &mockLogger{})
	require.NotNil(t, store)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, []byte("mint:volatile"), []byte("record")))

	val, err := store.Get(ctx, []byte("mint:volatile"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("record"), val)

	// 内存模式不在磁盘目录留下数据文件
	_, err = os.Stat(filepath.Join(tempDir, "MANIFEST"))
	assert.True(t, os.IsNotExist(err))
}

// 测试关闭后拒绝写入
func TestWriteAfterCloseRejected(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, store.Close())

	ctx := context.Background()
	err := store.Set(ctx, []byte("late-key"), []byte("late-value"))
	assert.Error(t, err)

	err = store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		return tx.Set([]byte("late-key"), []byte("late-value"))
	})
	assert.Error(t, err)
}

package badger

import (
	"context"
	"testing"

	interfaces "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 创建测试事务
// 存储实例的清理通过t.Cleanup注册，保证事务用完之后才关闭数据库
func createTestTransaction(t *testing.T) (*Transaction, *Store) {
	store, _, cleanup := setupTestStore(t)
	t.Cleanup(cleanup)

	txn := store.db.NewTransaction(true)
	tx := &Transaction{txn: txn}
	t.Cleanup(tx.Discard)

	return tx, store
}

// 测试事务基本操作
func TestTransactionCRUD(t *testing.T) {
	tx, _ := createTestTransaction(t)

	// 测试键值
	key := []byte("tx-test-key")
	value := []byte("tx-test-value")

	// 测试设置键值
	err := tx.Set(key, value)
	require.NoError(t, err)

	// 测试获取值
	val, err := tx.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, value, val)

	// 测试键存在
	exists, err := tx.Exists(key)
	assert.NoError(t, err)
	assert.True(t, exists)

	// 测试删除键
	err = tx.Delete(key)
	assert.NoError(t, err)

	// 验证键已删除
	exists, err = tx.Exists(key)
	assert.NoError(t, err)
	assert.False(t, exists)
}

// 测试事务提交与丢弃
func TestTransactionCommit(t *testing.T) {
	// 创建存储和事务
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// 准备两个事务，一个提交一个丢弃
	tx1 := &Transaction{txn: store.db.NewTransaction(true)}
	tx2 := &Transaction{txn: store.db.NewTransaction(true)}

	// 在两个事务中设置不同的键值
	key1 := []byte("commit-key")
	value1 := []byte("commit-value")
	key2 := []byte("discard-key")
	value2 := []byte("discard-value")

	require.NoError(t, tx1.Set(key1, value1))
	require.NoError(t, tx2.Set(key2, value2))

	// 提交事务1
	err := tx1.Commit()
	assert.NoError(t, err)
	assert.True(t, tx1.IsCommitted())

	// 丢弃事务2
	tx2.Discard()
	assert.True(t, tx2.IsDiscarded())

	// 验证事务1的键值已提交
	val, err := store.Get(ctx, key1)
	assert.NoError(t, err)
	assert.Equal(t, value1, val)

	// 验证事务2的键值未提交
	exists, err := store.Exists(ctx, key2)
	assert.NoError(t, err)
	assert.False(t, exists)
}

// 测试事务隔离性
func TestTransactionIsolation(t *testing.T) {
	// 创建存储
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	// 准备两个并发事务
	tx1 := &Transaction{txn: store.db.NewTransaction(true)}
	defer tx1.Discard()

	tx2 := &Transaction{txn: store.db.NewTransaction(true)}
	defer tx2.Discard()

	// 在事务1中设置键值
	key := []byte("isolation-key")
	value1 := []byte("isolation-value-1")
	require.NoError(t, tx1.Set(key, value1))

	// 在事务1提交前，事务2不应该能看到事务1的修改
	exists, err := tx2.Exists(key)
	assert.NoError(t, err)
	assert.False(t, exists)

	// 提交事务1
	require.NoError(t, tx1.Commit())

	// 创建新事务，应该能看到事务1的修改
	tx3 := &Transaction{txn: store.db.NewTransaction(true)}
	defer tx3.Discard()

	exists, err = tx3.Exists(key)
	assert.NoError(t, err)
	assert.True(t, exists)

	val, err := tx3.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, value1, val)
}

// 测试事务状态机
func TestTransactionStateMachine(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	t.Run("提交后禁止再操作", func(t *testing.T) {
		tx := &Transaction{txn: store.db.NewTransaction(true)}
		require.NoError(t, tx.Set([]byte("sm-key1"), []byte("v")))
		require.NoError(t, tx.Commit())

		// 提交后所有操作失败
		assert.Error(t, tx.Set([]byte("sm-key1"), []byte("v2")))
		_, err := tx.Get([]byte("sm-key1"))
		assert.Error(t, err)

		// 重复提交失败
		assert.Error(t, tx.Commit())
	})

	t.Run("丢弃后禁止提交", func(t *testing.T) {
		tx := &Transaction{txn: store.db.NewTransaction(true)}
		require.NoError(t, tx.Set([]byte("sm-key2"), []byte("v")))
		tx.Discard()

		assert.Error(t, tx.Commit())
		assert.True(t, tx.IsDiscarded())
	})

	t.Run("空事务提交是无操作", func(t *testing.T) {
		tx := &Transaction{txn: store.db.NewTransaction(true)}
		assert.NoError(t, tx.Commit())
		assert.True(t, tx.IsCommitted())
		assert.Equal(t, 0, tx.GetOperationCount())
	})

	t.Run("重复丢弃是安全的", func(t *testing.T) {
		tx := &Transaction{txn: store.db.NewTransaction(true)}
		tx.Discard()
		tx.Discard()
		assert.True(t, tx.IsDiscarded())
	})
}

// 测试事务实现接口
func TestTransactionInterface(t *testing.T) {
	tx, _ := createTestTransaction(t)

	// 验证Transaction实现了BadgerTransaction接口
	var _ interfaces.BadgerTransaction = tx
}

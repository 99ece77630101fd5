package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	badgerdb "github.com/dgraph-io/badger/v3"
	badgerconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBadgerOptions 构造修复/恢复流程使用的打开参数
func newTestBadgerOptions(dataDir string) badgerdb.Options {
	opts := badgerdb.DefaultOptions(dataDir)
	opts.SyncWrites = false
	opts.MemTableSize = 1 << 20
	opts.Logger = newBadgerLogger(&mockLogger{}, dataDir)
	return opts
}

// 测试修复流程对残留锁文件的处理
func TestTryRepairRemovesLeftoverLock(t *testing.T) {
	store, tempDir, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, []byte("mint:repair"), []byte("record")))
	require.NoError(t, store.Close())

	// 模拟进程异常退出残留的锁文件
	lockPath := filepath.Join(tempDir, "LOCK")
	require.NoError(t, os.WriteFile(lockPath, []byte("stale"), 0600))

	err := tryRepair(tempDir, newTestBadgerOptions(tempDir), &mockLogger{})
	require.NoError(t, err)

	// 修复后数据库可以正常打开，数据完好
	reopened := New(badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{
		Path:                 tempDir,
		SyncWrites:           false,
		MemTableSize:         1 << 20,
		EnableAutoCompaction: false,
	}), &mockLogger{})
	require.NotNil(t, reopened)
	defer reopened.Close()

	val, err := reopened.Get(ctx, []byte("mint:repair"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("record"), val)
}

// 测试从备份恢复数据库
func TestRestoreFromBackup(t *testing.T) {
	store, tempDir, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// 写入注册记录并创建备份
	require.NoError(t, store.Set(ctx, []byte("mint:restore-1"), []byte("record-1")))
	require.NoError(t, store.Set(ctx, []byte("mint:restore-2"), []byte("record-2")))

	backupPath := filepath.Join(tempDir, "backups", "registry_backup_20260101_000000.bak")
	require.NoError(t, store.CreateBackup(ctx, backupPath))
	require.NoError(t, store.Close())

	// 执行恢复
	err := restoreFromBackup(backupPath, tempDir, newTestBadgerOptions(tempDir), &mockLogger{})
	require.NoError(t, err)

	// 损坏现场被隔离保留
	matches, err := filepath.Glob(tempDir + ".corrupted.*")
	require.NoError(t, err)
	require.NotEmpty(t, matches, "原数据目录应被隔离保留")
	defer func() {
		for _, m := range matches {
			os.RemoveAll(m)
		}
	}()

	// 恢复记录文件存在
	_, err = os.Stat(filepath.Join(tempDir, "RESTORE_INFO"))
	assert.NoError(t, err)

	// 重新打开，数据完整
	reopened := New(badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{
		Path:                 tempDir,
		SyncWrites:           false,
		MemTableSize:         1 << 20,
		EnableAutoCompaction: false,
	}), &mockLogger{})
	require.NotNil(t, reopened)
	defer reopened.Close()

	val, err := reopened.Get(ctx, []byte("mint:restore-1"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("record-1"), val)

	val, err = reopened.Get(ctx, []byte("mint:restore-2"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("record-2"), val)

	// 备份历史随恢复迁移回新数据目录
	_, err = os.Stat(filepath.Join(tempDir, "backups", filepath.Base(backupPath)))
	assert.NoError(t, err)
}

// 测试查找最新备份
func TestFindLatestBackup(t *testing.T) {
	backupDir, err := os.MkdirTemp("", "badger-find-backup-test")
	require.NoError(t, err)
	defer os.RemoveAll(backupDir)

	t.Run("空目录返回空串", func(t *testing.T) {
		assert.Equal(t, "", findLatestBackup(backupDir))
	})

	t.Run("不存在的目录返回空串", func(t *testing.T) {
		assert.Equal(t, "", findLatestBackup(filepath.Join(backupDir, "missing")))
	})

	t.Run("返回时间戳最新的备份", func(t *testing.T) {
		names := []string{
			"registry_backup_20260101_010000.bak",
			"registry_backup_20260102_010000.bak",
			"registry_backup_20260101_230000.bak",
		}
		for _, name := range names {
			require.NoError(t, os.WriteFile(filepath.Join(backupDir, name), []byte("x"), 0600))
		}

		// 无关文件与子目录被忽略
		require.NoError(t, os.WriteFile(filepath.Join(backupDir, "other.bak"), []byte("x"), 0600))
		require.NoError(t, os.Mkdir(filepath.Join(backupDir, "registry_backup_99999999_999999.bak"), 0700))

		latest := findLatestBackup(backupDir)
		assert.Equal(t, filepath.Join(backupDir, "registry_backup_20260102_010000.bak"), latest)
	})
}

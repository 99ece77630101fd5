package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateBackup 测试创建备份功能
func TestCreateBackup(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// 插入一些注册记录
	testData := map[string][]byte{
		"mint:backup-1": []byte("backup-value1"),
		"mint:backup-2": []byte("backup-value2"),
		"mint:backup-3": []byte("backup-value3"),
	}
	for k, v := range testData {
		require.NoError(t, store.Set(ctx, []byte(k), v), "写入测试数据失败")
	}

	// 创建临时备份目录
	backupDir, err := os.MkdirTemp("", "badger-backup-test")
	require.NoError(t, err)
	defer os.RemoveAll(backupDir)

	// 创建备份文件路径
	backupFile := filepath.Join(backupDir, "registry_backup_20260101_000000.bak")

	// 执行备份
	err = store.CreateBackup(ctx, backupFile)
	assert.NoError(t, err, "创建备份失败")

	// 检查备份文件是否存在
	fileInfo, err := os.Stat(backupFile)
	assert.NoError(t, err, "备份文件不存在")
	assert.Greater(t, fileInfo.Size(), int64(0), "备份文件大小为0")

	// 临时文件不应残留
	_, err = os.Stat(backupFile + ".tmp")
	assert.True(t, os.IsNotExist(err), "临时备份文件未被清理")
}

// TestBackupRotation 测试旧备份清理
func TestBackupRotation(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	backupDir, err := os.MkdirTemp("", "badger-rotation-test")
	require.NoError(t, err)
	defer os.RemoveAll(backupDir)

	manager := newBackupManager(store, backupDir)

	// 构造5个带递增时间戳的备份文件和一个无关文件
	names := []string{
		"registry_backup_20260101_010000.bak",
		"registry_backup_20260101_020000.bak",
		"registry_backup_20260101_030000.bak",
		"registry_backup_20260101_040000.bak",
		"registry_backup_20260101_050000.bak",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(backupDir, name), []byte("x"), 0600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(backupDir, "notes.txt"), []byte("x"), 0600))

	// 只保留最新2个
	require.NoError(t, manager.cleanOldBackups(2))

	remaining, err := manager.listBackupFiles()
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, filepath.Join(backupDir, names[3]), remaining[0])
	assert.Equal(t, filepath.Join(backupDir, names[4]), remaining[1])

	// 无关文件不受影响
	_, err = os.Stat(filepath.Join(backupDir, "notes.txt"))
	assert.NoError(t, err)
}

// TestVerifyBackupFile 测试备份文件验证
func TestVerifyBackupFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "badger-verify-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	t.Run("不存在的文件返回错误", func(t *testing.T) {
		err := verifyBackupFile(filepath.Join(tempDir, "missing.bak"))
		assert.Error(t, err)
	})

	t.Run("空文件是合法备份", func(t *testing.T) {
		// 空注册表的备份就是空文件
		emptyPath := filepath.Join(tempDir, "empty.bak")
		require.NoError(t, os.WriteFile(emptyPath, nil, 0600))
		assert.NoError(t, verifyBackupFile(emptyPath))
	})

	t.Run("正常文件通过验证", func(t *testing.T) {
		normalPath := filepath.Join(tempDir, "normal.bak")
		require.NoError(t, os.WriteFile(normalPath, []byte("backup-bytes"), 0600))
		assert.NoError(t, verifyBackupFile(normalPath))
	})
}

// TestBackupLargeDataset 测试较大数据集的备份完整性
func TestBackupLargeDataset(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// 写入足够多的记录，确保跨越多个memtable
	for i := 0; i < 500; i++ {
		key := []byte(fmt.Sprintf("mint:large-%04d", i))
		value := make([]byte, 512)
		for j := range value {
			value[j] = byte(i % 256)
		}
		require.NoError(t, store.Set(ctx, key, value))
	}

	backupDir, err := os.MkdirTemp("", "badger-large-backup-test")
	require.NoError(t, err)
	defer os.RemoveAll(backupDir)

	backupFile := filepath.Join(backupDir, "registry_backup_20260101_000000.bak")
	require.NoError(t, store.CreateBackup(ctx, backupFile))

	fileInfo, err := os.Stat(backupFile)
	require.NoError(t, err)
	assert.Greater(t, fileInfo.Size(), int64(500*512), "备份文件应包含全部记录数据")
}

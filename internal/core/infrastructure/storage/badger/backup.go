package badger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
)

// backupManager 管理备份操作
// 互斥锁确保定期备份与清理不会并发执行
type backupManager struct {
	store     *Store
	backupDir string
	mutex     sync.Mutex
	logger    log.Logger
}

// newBackupManager 创建新的备份管理器
func newBackupManager(store *Store, backupDir string) *backupManager {
	return &backupManager{
		store:     store,
		backupDir: backupDir,
		logger:    store.logger,
	}
}

// CreateBackup 创建数据库备份
// 先写入临时文件，验证通过后再原子改名，避免留下半截备份
func (s *Store) CreateBackup(ctx context.Context, destPath string) error {
	s.logger.Infof("创建注册表备份到: %s", destPath)

	// 确保备份目录存在
	backupDir := filepath.Dir(destPath)
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		return fmt.Errorf("创建备份目录失败: %w", err)
	}

	// 创建临时备份文件
	tempPath := destPath + ".tmp"
	backupFile, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("创建临时备份文件失败: %w", err)
	}

	cleanupTemp := func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			s.logger.Warnf("删除临时备份文件失败: %v", removeErr)
		}
	}

	// 统计当前注册记录数，用于备份日志
	count := 0
	err = s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close() // Badger Iterator.Close() 无返回值

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		backupFile.Close()
		cleanupTemp()
		return fmt.Errorf("统计键数量失败: %w", err)
	}

	// 执行备份
	startTime := time.Now()

	// 带缓冲的写入，减少系统调用
	bufferedWriter := bufio.NewWriterSize(backupFile, 2*1024*1024) // 2MB缓冲区
	if _, err := s.db.Backup(bufferedWriter, 0); err != nil {
		bufferedWriter.Flush()
		backupFile.Close()
		cleanupTemp()
		s.logger.Errorf("执行备份失败: %v", err)
		return fmt.Errorf("执行备份失败: %w", err)
	}

	// 刷新缓冲区
	if err := bufferedWriter.Flush(); err != nil {
		backupFile.Close()
		cleanupTemp()
		return fmt.Errorf("刷新备份缓冲区失败: %w", err)
	}

	// 关闭文件以确保写入完成
	if err := backupFile.Close(); err != nil {
		cleanupTemp()
		return fmt.Errorf("关闭备份文件失败: %w", err)
	}

	// 验证备份文件可读
	if err := verifyBackupFile(tempPath); err != nil {
		cleanupTemp()
		return fmt.Errorf("备份验证失败: %w", err)
	}

	// 获取文件大小
	fileInfo, err := os.Stat(tempPath)
	if err != nil {
		cleanupTemp()
		return fmt.Errorf("获取备份文件信息失败: %w", err)
	}

	// 重命名临时文件为目标文件
	if err := os.Rename(tempPath, destPath); err != nil {
		cleanupTemp()
		return fmt.Errorf("重命名备份文件失败: %w", err)
	}

	s.logger.Infof("注册表备份成功: %s (大小: %d 字节, 记录数: %d, 耗时: %v)",
		destPath, fileInfo.Size(), count, time.Since(startTime))
	return nil
}

// StartAutomaticBackups 启动自动备份
// 根据指定的时间间隔定期备份数据库，并保留指定数量的备份
func (s *Store) StartAutomaticBackups(ctx context.Context, backupDir string, interval time.Duration, keepCount int) {
	s.logger.Infof("启动注册表自动备份任务，间隔：%v，保留数量：%d", interval, keepCount)

	// 确保备份目录存在
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		s.logger.Errorf("创建备份目录失败: %v", err)
		return
	}

	// 创建备份管理器
	manager := newBackupManager(s, backupDir)

	// 启动定期备份任务
	go func() {
		// 首次备份延迟1分钟，避开启动时的修复与预热
		initialDelay := time.NewTimer(1 * time.Minute)

		select {
		case <-initialDelay.C:
			if err := manager.performBackup(); err != nil {
				s.logger.Errorf("首次自动备份失败: %v", err)
			}
		case <-ctx.Done():
			initialDelay.Stop()
			return
		}

		// 设置定期备份
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := manager.performBackup(); err != nil {
					s.logger.Errorf("自动备份失败: %v", err)
				}

				// 清理旧备份
				if err := manager.cleanOldBackups(keepCount); err != nil {
					s.logger.Errorf("清理旧备份失败: %v", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// performBackup 执行一次备份
func (bm *backupManager) performBackup() error {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	timestamp := time.Now().Format("20060102_150405")
	backupName := fmt.Sprintf("registry_backup_%s.bak", timestamp)
	backupPath := filepath.Join(bm.backupDir, backupName)

	return bm.store.CreateBackup(context.Background(), backupPath)
}

// cleanOldBackups 清理旧备份，只保留指定数量的最新备份
func (bm *backupManager) cleanOldBackups(keepCount int) error {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	// 获取所有备份文件
	backups, err := bm.listBackupFiles()
	if err != nil {
		return fmt.Errorf("列出备份文件失败: %w", err)
	}

	// 如果备份数量不超过保留数量，不需要清理
	if len(backups) <= keepCount {
		return nil
	}

	// 删除最旧的备份
	deleteCount := len(backups) - keepCount
	for i := 0; i < deleteCount; i++ {
		backupPath := backups[i]
		if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
			bm.logger.Warnf("删除旧备份文件失败: %s, %v", backupPath, err)
			continue
		}
		bm.logger.Infof("已删除旧备份: %s", backupPath)
	}

	return nil
}

// listBackupFiles 列出所有备份文件，按时间戳排序（从旧到新）
func (bm *backupManager) listBackupFiles() ([]string, error) {
	// 读取备份目录
	files, err := os.ReadDir(bm.backupDir)
	if err != nil {
		return nil, fmt.Errorf("读取备份目录失败: %w", err)
	}

	// 过滤出备份文件
	var backups []string
	for _, file := range files {
		if !file.IsDir() && strings.HasPrefix(file.Name(), "registry_backup_") &&
			strings.HasSuffix(file.Name(), ".bak") {
			backups = append(backups, filepath.Join(bm.backupDir, file.Name()))
		}
	}

	// 文件名包含时间戳，字典序即时间序
	sort.Strings(backups)

	return backups, nil
}

// verifyBackupFile 验证备份文件格式
func verifyBackupFile(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("打开备份文件失败: %w", err)
	}
	defer file.Close() // 文件关闭错误通常可以忽略

	// 获取文件信息 - 确保文件存在并可访问
	if _, err := file.Stat(); err != nil {
		return fmt.Errorf("获取文件信息失败: %w", err)
	}

	// 空数据库备份也是合法的，只检查文件可读性
	header := make([]byte, 4)
	if _, err := file.Read(header); err != nil && err != io.EOF {
		return fmt.Errorf("读取备份文件头失败: %w", err)
	}

	return nil
}

// Package badger 提供基于BadgerDB的存储实现
package badger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
)

// tryRepair 尝试修复无法正常打开的数据库目录
//
// 修复手段：
//  1. 删除残留的LOCK/DISCARD文件（进程异常退出后常见）
//  2. 以修复参数打开一次（关闭冲突检测、退出时压缩L0），触发Badger自身的
//     MANIFEST回放与值日志截断
//  3. 执行一轮值日志GC并压缩LSM后关闭
//
// 该函数在Store创建之前调用，因此不是Store的方法
func tryRepair(dataDir string, opts badgerdb.Options, logger log.Logger) error {
	logger.Infof("开始尝试修复数据库，目录：%s", dataDir)

	// 删除残留的锁文件与丢弃统计文件
	for _, leftover := range []string{"LOCK", "DISCARD"} {
		leftoverPath := filepath.Join(dataDir, leftover)
		if _, err := os.Stat(leftoverPath); err == nil {
			if rmErr := os.Remove(leftoverPath); rmErr != nil {
				logger.Warnf("无法删除残留文件 %s: %v", leftover, rmErr)
			} else {
				logger.Infof("已删除残留文件: %s", leftover)
			}
		}
	}

	// 创建修复选项
	repairOpts := opts
	repairOpts.DetectConflicts = false
	repairOpts.CompactL0OnClose = true
	repairOpts.Logger = newBadgerLogger(logger, dataDir)

	db, err := badgerdb.Open(repairOpts)
	if err != nil {
		return fmt.Errorf("以修复模式打开数据库失败: %w", err)
	}

	// 回收值日志，清理回放过程产生的垃圾
	for i := 0; i < 5; i++ {
		if gcErr := db.RunValueLogGC(0.5); gcErr != nil {
			break
		}
	}

	// 压缩LSM树，减少下次打开时的回放量
	if err := db.Flatten(2); err != nil {
		logger.Warnf("修复过程压缩LSM失败: %v", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("修复后关闭数据库失败: %w", err)
	}

	logger.Info("数据库修复流程执行完成")
	return nil
}

// restoreFromBackup 从备份文件重建数据库目录
//
// 流程：
//  1. 将损坏目录整体改名隔离（保留现场供排查）
//  2. 重建空数据目录，并把备份历史目录移回来
//  3. 打开全新数据库，通过db.Load加载备份数据
//
// 备份时间点之后的写入无法恢复，调用方需在日志中明确提示
func restoreFromBackup(backupPath string, dataDir string, opts badgerdb.Options, logger log.Logger) error {
	logger.Infof("开始从备份恢复数据库, 源: %s, 目标: %s", backupPath, dataDir)

	// 检查备份文件存在
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("备份文件不可用: %w", err)
	}

	// 隔离损坏目录，保留现场
	quarantineDir := fmt.Sprintf("%s.corrupted.%s", dataDir, time.Now().Format("20060102_150405"))
	if err := os.Rename(dataDir, quarantineDir); err != nil {
		return fmt.Errorf("隔离损坏目录失败: %w", err)
	}
	logger.Warnf("损坏的数据目录已隔离至: %s", quarantineDir)

	// 重建数据目录
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("重建数据目录失败: %w", err)
	}

	// 把备份历史目录移回新数据目录，避免丢失历史备份
	// 移回后，调用方传入的 {dataDir}/backups/xxx.bak 路径重新有效
	oldBackupDir := filepath.Join(quarantineDir, "backups")
	newBackupDir := filepath.Join(dataDir, "backups")
	if _, err := os.Stat(oldBackupDir); err == nil {
		if mvErr := os.Rename(oldBackupDir, newBackupDir); mvErr != nil {
			logger.Warnf("无法迁移备份历史目录: %v", mvErr)
		}
	}

	// 打开备份文件
	backupFile, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("打开备份文件失败: %w", err)
	}
	defer backupFile.Close()

	// 在全新目录上打开数据库并加载备份
	restoreOpts := opts
	restoreOpts.Logger = newBadgerLogger(logger, dataDir)
	db, err := badgerdb.Open(restoreOpts)
	if err != nil {
		return fmt.Errorf("打开恢复数据库失败: %w", err)
	}

	if err := db.Load(backupFile, 16); err != nil {
		db.Close()
		return fmt.Errorf("加载备份数据失败: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("恢复后关闭数据库失败: %w", err)
	}

	// 记录恢复操作，便于运维审计
	restoreInfoPath := filepath.Join(dataDir, "RESTORE_INFO")
	restoreInfo := fmt.Sprintf("Restored from backup: %s\nTime: %s\n",
		backupPath, time.Now().Format(time.RFC3339))
	if err := os.WriteFile(restoreInfoPath, []byte(restoreInfo), 0600); err != nil {
		logger.Warnf("无法写入恢复信息: %v", err)
	}

	logger.Infof("成功从备份恢复数据库到: %s", dataDir)
	return nil
}

// findLatestBackup 查找最新的备份文件
func findLatestBackup(backupDir string) string {
	files, err := os.ReadDir(backupDir)
	if err != nil {
		return ""
	}

	var backups []string
	for _, file := range files {
		if !file.IsDir() && strings.HasPrefix(file.Name(), "registry_backup_") &&
			strings.HasSuffix(file.Name(), ".bak") {
			backups = append(backups, filepath.Join(backupDir, file.Name()))
		}
	}

	if len(backups) == 0 {
		return ""
	}

	// 按文件名排序，最后的就是最新的（文件名包含时间戳）
	sort.Strings(backups)
	return backups[len(backups)-1]
}

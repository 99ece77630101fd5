// Package badger 提供基于BadgerDB的存储实现
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	badgerconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/badger"
	log "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	interfaces "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	"github.com/deltaswapio/token-bridge-relayer/pkg/utils"
	"go.uber.org/zap"
)

// Store 实现BadgerStore接口
type Store struct {
	db         *badgerdb.DB
	config     *badgerconfig.Config
	logger     log.Logger
	cancelFunc context.CancelFunc // 用于取消后台任务的函数

	// 避免 Close 过程中仍被写入，触发 Badger y.AssertTrue(db.mt != nil) 的 fatal 退出
	closing int32
	writeWg sync.WaitGroup
}

// New 创建新的BadgerStore实例
// 初始化数据库并启动维护任务
func New(config *badgerconfig.Config, logger log.Logger) interfaces.BadgerStore {
	if logger == nil {
		logger = nopLogger{}
	}
	store := &Store{
		config: config,
		logger: logger,
	}

	// 确保数据目录存在
	dataDir := config.GetPath()
	if dataDir == "" {
		// 使用默认路径作为备用，确保路径解析正确
		dataDir = utils.ResolveDataPath("./data/badger")
		logger.Warnf("BadgerDB数据目录路径未配置，使用默认路径: %s", dataDir)
	}

	logger.Infof("初始化BadgerDB存储，数据目录: %s", dataDir)

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		logger.Errorf("无法创建BadgerDB数据目录: %v", err)
		return nil
	}

	// 创建BadgerDB配置
	opts := badgerdb.DefaultOptions(dataDir)
	opts.SyncWrites = config.IsSyncWritesEnabled()
	opts.MemTableSize = config.GetMemTableSize()

	// 注册表数据集很小（定长17字节记录），收紧默认内存占用：
	// - ValueLogFileSize 降到 256MB，减少 mmap 虚拟地址占用
	// - block/index cache 各 32MB 已远超数据集规模
	opts.ValueLogFileSize = 256 << 20
	opts.BlockCacheSize = 32 << 20
	opts.IndexCacheSize = 32 << 20
	opts.NumMemtables = 2

	// 后台整理参数
	opts.NumCompactors = 2
	opts.NumLevelZeroTables = 5
	opts.NumLevelZeroTablesStall = 10

	// 设置日志（带 dataDir，便于写入 BADGER_FATAL 标记用于下次启动自愈）
	opts.Logger = newBadgerLogger(logger, dataDir)

	// 声明数据库变量
	var db *badgerdb.DB

	// 检查是否强制使用内存模式
	if os.Getenv("TBR_MEMORY_ONLY_MODE") == "true" {
		logger.Infof("🧠 检测到内存数据库模式标志，直接启用内存BadgerDB")

		// 直接创建内存数据库
		memOpts := badgerdb.DefaultOptions("")
		memOpts = memOpts.WithInMemory(true)
		memOpts.Logger = newBadgerLogger(logger, "")
		memOpts.BlockCacheSize = 32 << 20
		memOpts.IndexCacheSize = 32 << 20
		memOpts.NumMemtables = 2
		memDB, memErr := badgerdb.Open(memOpts)
		if memErr != nil {
			logger.Errorf("无法打开内存BadgerDB: %v", memErr)
			return nil
		}
		db = memDB
		logger.Infof("✅ 内存BadgerDB启动成功（用户显式选择，数据不持久化）")
	} else {
		// 安全打开数据库（磁盘）
		var err error
		db, err = safeOpenDB(dataDir, opts, logger)
		if err != nil {
			// Fail-fast：注册记录是下游转账的授权依据，
			// 隐式回退到内存DB会让已注册的代币"消失"，制造不可见的拒绝服务
			logger.Errorf("无法打开BadgerDB(磁盘): %v", err)
			fmt.Printf("\n")
			fmt.Printf("❌ BadgerDB磁盘数据库打开失败（Fail-fast，不自动回退内存模式）\n")
			fmt.Printf("📁 数据目录: %s\n", dataDir)
			fmt.Printf("🛠️  建议操作:\n")
			fmt.Printf("   • 检查是否有多进程占用/锁冲突、目录权限、磁盘空间\n")
			fmt.Printf("   • 如需临时内存模式（数据不持久化），请显式设置 TBR_MEMORY_ONLY_MODE=true\n")
			fmt.Printf("\n")
			return nil
		}
	}

	// 设置数据库实例
	store.db = db

	// 启动维护例程
	ctx, cancel := context.WithCancel(context.Background())
	store.cancelFunc = cancel
	store.StartMaintenanceRoutines(ctx)

	// 如果启用自动压缩，设置备份目录并启动自动备份
	if config.IsAutoCompactionEnabled() {
		backupDir := filepath.Join(dataDir, "backups")
		if err := os.MkdirAll(backupDir, 0700); err != nil {
			logger.Warnf("无法创建备份目录: %v", err)
		} else {
			store.StartAutomaticBackups(ctx, backupDir, 1*time.Hour, 24) // 每小时备份，保留24个（1天）
		}
	}

	logger.Info("BadgerDB存储初始化完成")
	return store
}

// nopLogger 用于在测试/工具链等 logger 未注入时，避免 nil 指针崩溃。
// 生产环境应通过 DI 注入真实 logger。
type nopLogger struct{}

func (nopLogger) Debug(string)                   {}
func (nopLogger) Debugf(string, ...interface{})  {}
func (nopLogger) Info(string)                    {}
func (nopLogger) Infof(string, ...interface{})   {}
func (nopLogger) Warn(string)                    {}
func (nopLogger) Warnf(string, ...interface{})   {}
func (nopLogger) Error(string)                   {}
func (nopLogger) Errorf(string, ...interface{})  {}
func (nopLogger) Fatal(string)                   {}
func (nopLogger) Fatalf(string, ...interface{})  {}
func (nopLogger) With(...interface{}) log.Logger { return nopLogger{} }
func (nopLogger) Sync() error                    { return nil }
func (nopLogger) GetZapLogger() *zap.Logger      { return zap.NewNop() }

// Close 关闭存储并释放资源
func (s *Store) Close() error {
	// 进入关闭态：阻断后续写入，并等待 in-flight 写完成
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil
	}

	s.logger.Info("🔧 开始关闭BadgerDB存储...")

	// 取消所有后台任务
	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	if s.db == nil {
		s.logger.Info("🔧 数据库连接为空，无需关闭")
		return nil
	}

	// 等待所有写事务退出，避免 Close 过程中仍有 Update/Txn 写入
	waitCh := make(chan struct{})
	go func() {
		s.writeWg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(30 * time.Second):
		s.logger.Warn("⚠️ 等待 in-flight 写事务超时（30s），仍继续关闭 BadgerDB")
	}

	// 关闭数据库
	// 注意：sync_writes=true 时数据已实时同步，无需额外GC/同步
	if err := s.db.Close(); err != nil {
		// 如果是LOCK文件不存在的错误，只记录警告而不返回错误
		if strings.Contains(err.Error(), "LOCK: no such file or directory") {
			s.logger.Warn("BadgerDB LOCK文件已不存在，这通常是正常的关闭过程")
		} else {
			s.logger.Errorf("🔧 关闭BadgerDB失败: %v", err)
			return fmt.Errorf("关闭BadgerDB失败: %w", err)
		}
	}

	// 仅在 db.Close 成功后删除运行标记，
	// 避免"异常退出但 marker 已被提前删除"导致下次启动无法进入修复流程
	markerPath := filepath.Join(s.config.GetPath(), "BADGER_RUNNING")
	if err := os.Remove(markerPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warnf("无法删除数据库运行标记: %v", err)
	}

	s.logger.Info("🔧 BadgerDB存储已安全关闭")
	return nil
}

func (s *Store) beginWrite() (func(), error) {
	// 关闭过程中拒绝写入，避免 Badger Close 与写入并发导致 fatal
	if atomic.LoadInt32(&s.closing) == 1 {
		return nil, fmt.Errorf("badger store is closing")
	}
	s.writeWg.Add(1)
	// double-check，避免在 Add 之后进入 closing
	if atomic.LoadInt32(&s.closing) == 1 {
		s.writeWg.Done()
		return nil, fmt.Errorf("badger store is closing")
	}
	return s.writeWg.Done, nil
}

// Get 获取指定键的值
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var valCopy []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil // 键不存在时返回nil值和nil错误
			}
			return err
		}

		// 复制值
		valCopy, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("badger获取键失败: %w", err)
	}

	return valCopy, nil
}

// Set 设置键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete 删除指定键的值
func (s *Store) Delete(ctx context.Context, key []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	var exists bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key)
		if err == badgerdb.ErrKeyNotFound {
			exists = false
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})

	if err != nil {
		return false, fmt.Errorf("badger检查键存在性失败: %w", err)
	}

	return exists, nil
}

// PrefixScan 按前缀扫描键值对
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	result := make(map[string][]byte)

	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close() // Badger Iterator.Close() 无返回值

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			k := item.Key()

			// 复制键
			keyCopy := make([]byte, len(k))
			copy(keyCopy, k)

			// 复制值
			valCopy, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			result[string(keyCopy)] = valCopy
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("badger前缀扫描失败: %w", err)
	}

	return result, nil
}

// RunInTransaction 在串行化事务中执行操作
// 提交时检测到并发冲突返回 interfaces.ErrTxnConflict，调用方可有限次重试
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx interfaces.BadgerTransaction) error) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	// 创建BadgerDB事务
	txn := s.db.NewTransaction(true)

	// 创建我们的事务包装
	tx := &Transaction{
		txn:   txn,
		state: int32(TxActive),
	}

	// 确保事务最终被关闭
	defer func() {
		if tx.IsActive() {
			tx.Discard()
		}
	}()

	// 执行用户提供的事务函数
	if err := fn(tx); err != nil {
		if tx.IsActive() {
			tx.Discard()
		}
		return fmt.Errorf("事务执行失败: %w", err)
	}

	// 如果事务仍处于活动状态，提交它
	if tx.IsActive() {
		if err := tx.Commit(); err != nil {
			// 串行化冲突作为可识别的哨兵错误上抛，调用方据此决定是否重试
			if errors.Is(err, badgerdb.ErrConflict) {
				return interfaces.ErrTxnConflict
			}
			return err
		}
	} else if tx.IsDiscarded() {
		return fmt.Errorf("事务已被用户丢弃")
	}

	return nil
}

// safeOpenDB 带启动自检的数据库打开流程
//
// 流程：
//  1. 上次运行留下 BADGER_FATAL 标记 → 先执行修复
//  2. 存在 BADGER_RUNNING 标记（疑似异常关闭）→ 删除标记直接尝试打开
//  3. 打开失败 → 修复后重试 → 仍失败则从最近备份恢复后重试 → 最终失败返回错误
func safeOpenDB(dataDir string, opts badgerdb.Options, logger log.Logger) (*badgerdb.DB, error) {
	fatalMarkerPath := filepath.Join(dataDir, "BADGER_FATAL")
	if _, ferr := os.Stat(fatalMarkerPath); ferr == nil {
		logger.Warn("检测到 BADGER_FATAL 标记文件：上次运行可能触发了 Badger 致命错误前兆，先执行修复流程")
		if repairErr := tryRepair(dataDir, opts, logger); repairErr != nil {
			logger.Errorf("BADGER_FATAL 自动修复失败: %v", repairErr)
		} else {
			logger.Info("BADGER_FATAL 自动修复完成")
		}
	}

	// 检查是否存在未完成标记
	markerPath := filepath.Join(dataDir, "BADGER_RUNNING")
	if _, err := os.Stat(markerPath); err == nil {
		// 存在标记，可能是异常关闭；也可能只是标记文件没删除，
		// 先尝试直接删除标记并打开
		logger.Warn("检测到BADGER_RUNNING标记文件，可能是上次未正常关闭")
		if err := os.Remove(markerPath); err != nil && !os.IsNotExist(err) {
			logger.Warnf("无法删除标记文件: %v", err)
		}
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		logger.Warnf("直接打开失败: %v，开始执行修复流程...", err)

		if repairErr := tryRepair(dataDir, opts, logger); repairErr != nil {
			logger.Errorf("自动修复失败: %v", repairErr)
		}

		db, err = badgerdb.Open(opts)
		if err != nil {
			// 修复无效：尝试从最近的自动备份恢复
			backupDir := filepath.Join(dataDir, "backups")
			latestBackup := findLatestBackup(backupDir)
			if latestBackup == "" {
				return nil, fmt.Errorf("打开BadgerDB失败且无可用备份: %w", err)
			}

			logger.Warnf("⚠️ 即将从备份恢复，备份时间点之后的注册记录将丢失: %s", latestBackup)
			if restoreErr := restoreFromBackup(latestBackup, dataDir, opts, logger); restoreErr != nil {
				return nil, fmt.Errorf("数据库损坏且恢复失败: 打开错误=%v, 恢复错误=%w", err, restoreErr)
			}

			db, err = badgerdb.Open(opts)
			if err != nil {
				return nil, fmt.Errorf("从备份恢复后仍无法打开数据库: %w", err)
			}
			logger.Info("从备份恢复成功")
		}
	}

	// 创建运行标记
	if err := os.WriteFile(markerPath, []byte("1"), 0600); err != nil {
		logger.Warn("无法创建数据库运行标记")
	}

	// 成功打开后，清理 BADGER_FATAL（如果存在）
	if rmErr := os.Remove(fatalMarkerPath); rmErr != nil && !os.IsNotExist(rmErr) {
		logger.Warnf("无法删除 BADGER_FATAL 标记文件: %v", rmErr)
	}

	return db, nil
}

// badgerLogger 实现BadgerDB的日志接口
type badgerLogger struct {
	logger  log.Logger
	dataDir string
}

// newBadgerLogger 创建BadgerDB日志适配器
func newBadgerLogger(logger log.Logger, dataDir string) *badgerLogger {
	return &badgerLogger{logger: logger, dataDir: dataDir}
}

// Errorf 输出错误日志
func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[BadgerDB] "+format, args...)

	// 捕获 Badger 关键致命前兆，写入 BADGER_FATAL 标记，确保下次启动强制走修复流程
	// 典型前兆：
	// - while deleting file: ... .mem ... no such file or directory
	// - Assert failed
	if strings.Contains(format, "while deleting file") || strings.Contains(format, "Assert failed") {
		if strings.TrimSpace(l.dataDir) != "" {
			_ = os.WriteFile(filepath.Join(l.dataDir, "BADGER_FATAL"), []byte(time.Now().Format(time.RFC3339Nano)), 0600)
		}
	}
}

// Warningf 输出警告日志
func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[BadgerDB] "+format, args...)
}

// Infof 输出信息日志
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Infof("[BadgerDB] "+format, args...)
}

// Debugf 输出调试日志
func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

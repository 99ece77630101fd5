// Package memory 提供基于BigCache的内存缓存实现
package memory

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	memoryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/memory"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	storage "github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
)

// TTL前缀，用于在缓存键中存储每个键的过期时间
// BigCache本身只有全局生命周期窗口，按键TTL通过旁路键实现
const ttlPrefix = "_ttl_"

// Store 实现了MemoryStore接口，基于BigCache提供内存缓存功能
// 作为注册表的读路径缓存：BadgerDB始终是权威数据，缓存未命中只影响延迟
type Store struct {
	cache  *bigcache.BigCache
	logger log.Logger
	mutex  sync.RWMutex
	config *memoryconfig.Config
	closed bool
}

// New 创建一个新的BigCache内存存储实例
func New(config *memoryconfig.Config, logger log.Logger) storage.MemoryStore {
	// 解析配置的生命周期窗口
	lifeWindow, err := time.ParseDuration(config.GetLifeWindow())
	if err != nil {
		logger.Errorf("解析生命周期窗口失败: %v", err)
		lifeWindow = 10 * time.Minute // 默认值
	}

	// 解析清理窗口
	cleanWindow, err := time.ParseDuration(config.GetCleanWindow())
	if err != nil {
		logger.Errorf("解析清理窗口失败: %v", err)
		cleanWindow = 5 * time.Minute // 默认值
	}

	// 使用配置参数设置BigCache
	bigCacheConfig := bigcache.DefaultConfig(lifeWindow)
	bigCacheConfig.MaxEntriesInWindow = config.GetMaxEntriesInWindow()
	bigCacheConfig.MaxEntrySize = config.GetMaxEntrySize()
	bigCacheConfig.Shards = 64 // 注册表缓存规模有限，64分片已足够并发
	bigCacheConfig.CleanWindow = cleanWindow
	bigCacheConfig.HardMaxCacheSize = int(config.GetMaxMemory() >> 20) // MB

	// 创建BigCache实例
	cache, err := bigcache.New(context.Background(), bigCacheConfig)
	if err != nil {
		logger.Errorf("创建BigCache实例失败: %v", err)
		return nil
	}

	return &Store{
		cache:  cache,
		logger: logger,
		config: config,
	}
}

// Close 关闭缓存并释放资源
// 不属于MemoryStore接口，由DI容器在应用关闭时调用
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		s.logger.Info("内存存储已关闭，跳过重复关闭")
		return nil
	}

	s.logger.Info("关闭内存存储")
	err := s.cache.Close()
	if err == nil {
		s.closed = true
	}
	return err
}

// Get 获取缓存值
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.closed {
		return nil, false, fmt.Errorf("内存存储已关闭")
	}

	// 检查键是否过期
	if expired, err := s.isExpired(key); err != nil {
		if err == bigcache.ErrEntryNotFound {
			return nil, false, nil
		}
		return nil, false, err
	} else if expired {
		// 惰性清理过期键，BigCache自身的删除是并发安全的
		_ = s.cache.Delete(key)
		_ = s.cache.Delete(ttlPrefix + key)
		return nil, false, nil
	}

	// 获取值
	value, err := s.cache.Get(key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return nil, false, nil
		}
		s.logger.Warnf("获取缓存键[%s]失败: %v", key, err)
		return nil, false, err
	}

	return value, true, nil
}

// Set 设置缓存值，可指定过期时间
// ttl为0时不写过期旁路键，条目的存活由BigCache的全局生命周期窗口兜底
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.closed {
		return fmt.Errorf("内存存储已关闭")
	}

	// 设置键值对
	if err := s.cache.Set(key, value); err != nil {
		s.logger.Warnf("设置缓存键[%s]失败: %v", key, err)
		return err
	}

	// 如果指定了TTL，则设置过期时间
	if ttl > 0 {
		expirationTime := time.Now().Add(ttl).UnixNano()
		expirationBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(expirationBytes, uint64(expirationTime))

		if err := s.cache.Set(ttlPrefix+key, expirationBytes); err != nil {
			s.logger.Warnf("设置缓存键[%s]的TTL失败: %v", key, err)
			return err
		}
	} else {
		// TTL为0时删除可能存在的过期记录
		_ = s.cache.Delete(ttlPrefix + key)
	}

	return nil
}

// Delete 删除指定键的缓存
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.closed {
		return fmt.Errorf("内存存储已关闭")
	}

	// 删除键值对和对应的TTL记录
	if err := s.cache.Delete(key); err != nil && err != bigcache.ErrEntryNotFound {
		s.logger.Warnf("删除缓存键[%s]失败: %v", key, err)
		return err
	}

	_ = s.cache.Delete(ttlPrefix + key)

	return nil
}

// Count 获取当前缓存中的有效键数量
// 遍历时跳过TTL旁路键和已过期的键，注册表缓存规模有限，遍历开销可接受
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("内存存储已关闭")
	}

	var count int64
	iterator := s.cache.Iterator()
	for iterator.SetNext() {
		entry, err := iterator.Value()
		if err != nil {
			continue
		}

		key := entry.Key()
		if strings.HasPrefix(key, ttlPrefix) {
			continue
		}

		if expired, _ := s.isExpired(key); expired {
			continue
		}

		count++
	}

	return count, nil
}

// isExpired 检查键是否已过期
func (s *Store) isExpired(key string) (bool, error) {
	// 获取TTL信息
	ttlBytes, err := s.cache.Get(ttlPrefix + key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			// 没有TTL记录，表示不单独过期
			return false, nil
		}
		return false, err
	}

	// 检查键本身是否存在
	if _, err := s.cache.Get(key); err != nil {
		return false, err
	}

	// 解析过期时间
	expirationTime := int64(binary.LittleEndian.Uint64(ttlBytes))

	return time.Now().UnixNano() > expirationTime, nil
}

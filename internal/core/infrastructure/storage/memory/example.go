// Package memory 提供基于BigCache的内存缓存实现
package memory

import (
	"context"
	"time"

	memoryconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/storage/memory"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
)

// Example 展示如何把内存存储用作注册表读缓存
func Example(logger log.Logger) {
	// 创建默认配置 - 使用新的配置系统
	config := memoryconfig.New(nil)

	// 创建内存存储
	store := New(config, logger)

	// 创建上下文
	ctx := context.Background()

	// 缓存键与持久层保持同一命名，按资产标识索引
	key := "mint:So11111111111111111111111111111111111111112"
	record := []byte("encoded-registration-record")

	// 写入缓存，TTL控制内存回收节奏（记录本身不可变）
	if err := store.Set(ctx, key, record, 10*time.Minute); err != nil {
		logger.Errorf("设置缓存失败: %v", err)
		return
	}

	// 读路径：命中直接返回，未命中回源BadgerDB
	result, exists, err := store.Get(ctx, key)
	if err != nil {
		logger.Errorf("获取缓存失败: %v", err)
		return
	}
	if exists {
		logger.Infof("缓存命中: %s (%d 字节)", key, len(result))
	} else {
		logger.Infof("缓存未命中: %s，需要回源权威存储", key)
	}

	// 当前缓存的记录条数
	count, err := store.Count(ctx)
	if err != nil {
		logger.Errorf("获取计数失败: %v", err)
		return
	}
	logger.Infof("缓存中注册记录数量: %d", count)

	// 失效某个键（例如运维手动修正后强制回源）
	if err := store.Delete(ctx, key); err != nil {
		logger.Errorf("删除键失败: %v", err)
		return
	}
	logger.Infof("已失效缓存键 %s", key)
}

// Package storage 提供中继器的内存存储接口定义
//
// 🧠 **内存存储服务 (Memory Storage Service)**
//
// 本文件定义了代币注册中继器的内存缓存接口，专注于：
// - 高速缓存：已注册记录的内存级读缓存
// - 生命周期控制：支持TTL过期和自动清理机制
// - 多引擎支持：可基于BigCache等实现
//
// 🎯 **核心功能**
// - MemoryStore：内存缓存服务接口，承载注册表的读路径加速
// - 过期管理：灵活的TTL设置和自动过期清理
//
// 🔗 **组件关系**
// - MemoryStore：被注册表读路径使用
// - 与BadgerStore：配合BadgerDB提供分层存储，BadgerDB始终是权威数据
package storage

import (
	"context"
	"time"
)

// =============================================================================
// MemoryStore 接口定义
// =============================================================================

// MemoryStore 定义了通用的内存缓存接口
//
// 提供注册表读路径的高速内存存储服务：
// - 快速缓存：已注册记录的内存级缓存存储
// - 生命周期管理：支持TTL过期和自动清理机制
//
// 注册记录一经写入便不再变化，缓存命中永远不会读到过期状态
type MemoryStore interface {
	// 注意：内存存储资源由DI容器自动管理，无需手动Close()

	// Get 获取缓存值，返回值、是否存在及可能的错误
	// value: 缓存的二进制数据
	// exists: true表示键存在，false表示键不存在
	// err: 操作过程中发生的错误，nil表示无错误
	Get(ctx context.Context, key string) (value []byte, exists bool, err error)

	// Set 设置缓存值，可指定过期时间
	// key: 缓存键名
	// value: 要缓存的二进制数据
	// ttl: 生存时间，0表示永不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除指定键的缓存
	// 如果键不存在，通常不会返回错误
	Delete(ctx context.Context, key string) error

	// Count 获取当前缓存中的键数量
	// 返回缓存中当前有效的键数量
	Count(ctx context.Context) (int64, error)
}

// Package storage 提供中继器的存储接口定义
//
// 💾 **BadgerDB存储服务 (BadgerDB Storage Service)**
//
// 本文件定义了代币注册中继器的BadgerDB存储接口，专注于：
// - 高性能存储：BadgerDB的原生高性能键值存储服务
// - 事务支持：支持ACID事务和冲突检测
// - 原子写入：注册记录的全有或全无写入保障
//
// 🎯 **核心功能**
// - BadgerStore：键值存储服务接口，提供注册表所需的存储能力
// - BadgerTransaction：串行化事务接口，承载检查并写入的原子序列
// - 前缀扫描：注册记录的全量枚举
//
// 🔗 **组件关系**
// - BadgerStore：被代币仓储、所有者配置仓储使用
// - 与MemoryStore：作为读路径缓存之下的权威存储
package storage

import (
	"context"
	"errors"
)

// ErrTxnConflict 表示串行化事务与并发提交发生冲突
// 调用方捕获该错误后可以有限次重试事务
var ErrTxnConflict = errors.New("storage: transaction conflict")

//=============================================================================
// BadgerStore 接口定义
//=============================================================================

// BadgerStore 定义了键值存储的应用接口
// 提供注册表持久化所需的键值操作与事务能力
type BadgerStore interface {
	//-------------------------------------------------------------------------
	// 生命周期管理
	//-------------------------------------------------------------------------

	// Close 关闭BadgerDB数据库连接
	// 确保所有待处理的事务被提交，数据被正确写入磁盘
	// 应用关闭时必须调用此方法以避免数据损坏
	Close() error

	//-------------------------------------------------------------------------
	// 基本键值操作
	//-------------------------------------------------------------------------

	// Get 获取指定键的值
	// 如果键不存在，返回nil值和nil错误
	// 如果发生错误，返回nil值和相应错误
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对
	// 如果键已存在，将覆盖原有值
	// 如果键不存在，将创建新的键值对
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除指定键的值
	// 如果键不存在，不会返回错误
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	// 返回true表示键存在，false表示键不存在
	Exists(ctx context.Context, key []byte) (bool, error)

	//-------------------------------------------------------------------------
	// 扫描操作
	//-------------------------------------------------------------------------

	// PrefixScan 按前缀扫描键值对
	// 返回所有键以指定前缀开头的键值对
	// 返回map的键为键的字符串表示
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	//-------------------------------------------------------------------------
	// 事务操作
	//-------------------------------------------------------------------------

	// RunInTransaction 在串行化事务中执行操作
	// fn函数在事务上下文中执行，可以执行多个原子操作
	// 如果fn返回错误，事务将被回滚
	// 如果提交时检测到并发冲突，返回ErrTxnConflict
	RunInTransaction(ctx context.Context, fn func(tx BadgerTransaction) error) error
}

//=============================================================================
// BadgerTransaction 接口定义
//=============================================================================

// BadgerTransaction 定义了键值存储事务操作接口
// 提供在单个事务中执行多个操作的能力
// 事务保证所有操作要么全部成功，要么全部失败
type BadgerTransaction interface {
	// Get 获取指定键的值
	// 如果键不存在，返回nil值和nil错误
	Get(key []byte) ([]byte, error)

	// Set 设置键值对
	// 如果键已存在，将覆盖原有值
	Set(key, value []byte) error

	// Delete 删除指定键的值
	// 如果键不存在，不会返回错误
	Delete(key []byte) error

	// Exists 检查键是否存在
	// 返回true表示键存在，false表示键不存在
	Exists(key []byte) (bool, error)
}

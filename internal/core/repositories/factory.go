// Package repositories 提供注册表数据仓储实现
package repositories

import (
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/storage"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/repository"
)

// ServiceInput 定义仓储服务工厂的输入参数
type ServiceInput struct {
	// 基础设施组件
	Logger log.Logger

	// 存储组件
	BadgerStore storage.BadgerStore
}

// ServiceOutput 定义仓储服务工厂的输出结果
type ServiceOutput struct {
	TokenRepository        repository.TokenRepository
	SenderConfigRepository repository.SenderConfigRepository
}

// CreateTokenRepository 创建注册记录仓储
//
// 🏭 **注册记录仓储工厂**：
// 该函数负责创建注册记录仓储，处理所有必要的依赖注入。
func CreateTokenRepository(input ServiceInput) (repository.TokenRepository, error) {
	return NewTokenStorage(input.BadgerStore, input.Logger)
}

// CreateSenderConfigRepository 创建所有者配置仓储
//
// 🏭 **所有者配置仓储工厂**：
// 该函数负责创建所有者配置仓储，处理所有必要的依赖注入。
func CreateSenderConfigRepository(input ServiceInput) (repository.SenderConfigRepository, error) {
	return NewSenderConfigStorage(input.BadgerStore, input.Logger)
}

// CreateAllServices 创建所有仓储服务
//
// 🏭 **统一服务工厂**：
// 该函数是仓储模块的主要工厂方法，负责创建所有相关服务。
// 两个仓储共享同一个权威存储，没有相互依赖。
func CreateAllServices(input ServiceInput) (ServiceOutput, error) {
	// 1. 创建注册记录仓储
	tokenRepository, err := CreateTokenRepository(input)
	if err != nil {
		return ServiceOutput{}, err
	}

	// 2. 创建所有者配置仓储
	senderConfigRepository, err := CreateSenderConfigRepository(input)
	if err != nil {
		return ServiceOutput{}, err
	}

	return ServiceOutput{
		TokenRepository:        tokenRepository,
		SenderConfigRepository: senderConfigRepository,
	}, nil
}

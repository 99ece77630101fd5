package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deltaswapio/token-bridge-relayer/client/output"
	"github.com/deltaswapio/token-bridge-relayer/client/relayer"
	"github.com/deltaswapio/token-bridge-relayer/client/ux"
)

// defaultServerURL 未指定服务端地址时的默认值
const defaultServerURL = "http://127.0.0.1:8080"

// GlobalFlags 全局标志
type GlobalFlags struct {
	Server       string        // 服务端地址
	Timeout      time.Duration // 请求超时
	OutputFormat string        // 输出格式
	Silent       bool          // 静默模式
	Verbose      bool          // 详细模式
}

var (
	globalFlags GlobalFlags
	formatter   *output.Formatter
	components  *ux.Components
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "relayerctl",
	Short: "代币桥接中继注册服务命令行客户端",
	Long: `relayerctl - 代币桥接中继注册服务的薄客户端

relayerctl 通过 REST API 与注册服务交互,提供完整的注册表管理能力:
- 注册代币并设置兑换参数
- 查询单条或分页浏览注册记录
- 初始化和查询所有者配置
- 生成所有者密钥对（BIP39助记词）

支持 JSON/表格等多种输出格式,适合脚本管道和人工查看两种场景。`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 初始化输出格式化器
		format := output.ParseFormat(globalFlags.OutputFormat)
		formatter = output.NewFormatter(format, os.Stdout)
		formatter.SetSilent(globalFlags.Silent)

		// 初始化交互组件
		components = ux.NewComponents()

		return nil
	},
}

// pingCmd 服务端连通性检测
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "检测服务端连通性",
	Long:  "调用服务端健康检查端点,确认网络可达且服务存活",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := getClient()
		defer closeClient(client)

		ctx, cancel := commandContext()
		defer cancel()

		start := time.Now()
		if err := client.Ping(ctx); err != nil {
			formatter.PrintError(err)
			return err
		}

		formatter.PrintSuccess("服务端存活")
		return formatter.Print(map[string]interface{}{
			"server":  resolveServer(),
			"healthy": true,
			"latency": time.Since(start).String(),
		})
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// 全局标志
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Server, "server", "s", "", "服务端地址 (默认取 TBR_SERVER 环境变量,其次 "+defaultServerURL+")")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.Timeout, "timeout", 30*time.Second, "单次请求超时")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "json", "输出格式: json|pretty|table|text")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Silent, "silent", false, "静默模式 (仅输出结果)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "详细输出")

	// 添加子命令
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(keygenCmd)
}

// resolveServer 确定服务端地址：标志 > 环境变量 > 默认值
func resolveServer() string {
	if globalFlags.Server != "" {
		return globalFlags.Server
	}
	if env := os.Getenv("TBR_SERVER"); env != "" {
		return env
	}
	return defaultServerURL
}

// getClient 获取注册服务客户端
func getClient() *relayer.Client {
	return relayer.NewClient(resolveServer(), globalFlags.Timeout)
}

// commandContext 命令级上下文
//
// 单次请求超时由HTTP客户端控制；这里额外给整条命令一个略宽的
// 截止时间，保证翻页类命令不会无限执行。
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), globalFlags.Timeout*4)
}

// closeClient 关闭客户端（错误仅提示，不中断命令）
func closeClient(client *relayer.Client) {
	if err := client.Close(); err != nil && globalFlags.Verbose {
		fmt.Fprintf(os.Stderr, "关闭客户端失败: %v\n", err)
	}
}

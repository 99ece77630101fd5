package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

var ownerInitYes bool

// ownerCmd 所有者配置相关命令
var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "所有者配置管理",
	Long:  "查询和初始化注册表的所有者配置",
}

// ownerShowCmd 查询所有者配置
var ownerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "查询所有者配置",
	Long:  "查询当前所有者公钥及初始化状态",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := getClient()
		defer closeClient(client)

		ctx, cancel := commandContext()
		defer cancel()

		info, err := client.GetOwner(ctx)
		if err != nil {
			printRegistryError(err)
			return err
		}

		if !info.Initialized {
			formatter.PrintWarning("所有者尚未初始化，注册操作将被拒绝")
		}

		return formatter.Print(map[string]interface{}{
			"owner":       info.Owner,
			"initialized": info.Initialized,
		})
	},
}

// ownerInitCmd 初始化所有者
var ownerInitCmd = &cobra.Command{
	Use:   "init <owner-principal>",
	Short: "初始化所有者",
	Long: `初始化注册表的所有者配置。

所有者只能初始化一次，之后所有注册操作都要求该身份。
请确认公钥无误——初始化后无法通过本工具变更。

示例：
  relayerctl owner init <principal>
  relayerctl owner init <principal> --yes   # 跳过确认（脚本场景）`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner := args[0]

		if _, err := types.ParsePrincipal(owner); err != nil {
			return fmt.Errorf("所有者公钥无效: %w", err)
		}

		if !ownerInitYes {
			confirmed, err := components.ConfirmDialog(
				"初始化所有者",
				fmt.Sprintf("将把所有者设置为 %s，该操作不可撤销", owner),
			)
			if err != nil {
				return err
			}
			if !confirmed {
				formatter.PrintInfo("已取消")
				return nil
			}
		}

		client := getClient()
		defer closeClient(client)

		ctx, cancel := commandContext()
		defer cancel()

		info, err := client.InitializeOwner(ctx, owner)
		if err != nil {
			printRegistryError(err)
			return err
		}

		formatter.PrintSuccess(fmt.Sprintf("所有者已初始化: %s", info.Owner))
		return formatter.Print(map[string]interface{}{
			"owner":       info.Owner,
			"initialized": info.Initialized,
		})
	},
}

func init() {
	ownerCmd.AddCommand(ownerShowCmd)
	ownerCmd.AddCommand(ownerInitCmd)

	// ownerInitCmd 标志
	ownerInitCmd.Flags().BoolVarP(&ownerInitYes, "yes", "y", false, "跳过交互确认")
}

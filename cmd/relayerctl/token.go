package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/snappy"
	"github.com/spf13/cobra"

	"github.com/deltaswapio/token-bridge-relayer/client/output"
	"github.com/deltaswapio/token-bridge-relayer/client/relayer"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

var (
	tokenSwapRate      uint64
	tokenMaxNativeSwap uint64
	tokenOwner         string
	tokenPage          int
	tokenPageSize      int
	tokenExportOut     string
	tokenExportSnappy  bool
)

// exportPageSize 导出时的单页大小（服务端上限以内尽量取大）
const exportPageSize = 100

// tokenCmd 注册表相关命令
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "注册表管理",
	Long:  "注册代币、查询注册记录、分页浏览和导出注册表",
}

// tokenRegisterCmd 注册代币
var tokenRegisterCmd = &cobra.Command{
	Use:   "register <mint>",
	Short: "注册代币",
	Long: `向注册表注册代币并设置兑换参数。

仅所有者可执行。调用者身份通过 --owner 标志或 TBR_OWNER 环境变量提供。

兑换汇率必须大于0；原生资产的最大原生币兑换额度必须为0。

示例：
  relayerctl token register <mint> --swap-rate 1000000 --owner <principal>
  relayerctl token register <mint> --swap-rate 500000 --max-native-swap-amount 2000000000 --owner <principal>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mint := args[0]

		// 本地先做格式校验，避免无谓的网络往返
		if _, err := types.ParseMintAddress(mint); err != nil {
			return fmt.Errorf("Mint地址无效: %w", err)
		}

		caller := resolveOwnerPrincipal()
		if caller == "" {
			return fmt.Errorf("缺少调用者身份: 请通过 --owner 标志或 TBR_OWNER 环境变量提供")
		}
		if _, err := types.ParsePrincipal(caller); err != nil {
			return fmt.Errorf("调用者身份无效: %w", err)
		}

		client := getClient()
		defer closeClient(client)

		ctx, cancel := commandContext()
		defer cancel()

		record, err := client.RegisterToken(ctx, caller, &relayer.RegisterTokenRequest{
			Mint:                mint,
			SwapRate:            tokenSwapRate,
			MaxNativeSwapAmount: tokenMaxNativeSwap,
		})
		if err != nil {
			printRegistryError(err)
			return err
		}

		formatter.PrintSuccess(fmt.Sprintf("代币注册成功: %s", record.Mint))
		return formatter.Print(tokenRecordMap(record))
	},
}

// tokenShowCmd 查询单条注册记录
var tokenShowCmd = &cobra.Command{
	Use:   "show <mint>",
	Short: "查询注册记录",
	Long:  "按Mint地址查询单条注册记录",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mint := args[0]

		if _, err := types.ParseMintAddress(mint); err != nil {
			return fmt.Errorf("Mint地址无效: %w", err)
		}

		client := getClient()
		defer closeClient(client)

		ctx, cancel := commandContext()
		defer cancel()

		record, err := client.GetToken(ctx, mint)
		if err != nil {
			printRegistryError(err)
			return err
		}

		return formatter.Print(tokenRecordMap(record))
	},
}

// tokenListCmd 分页浏览注册表
var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "分页浏览注册表",
	Long:  "按页浏览所有注册记录（按Mint地址字典序排列）",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := getClient()
		defer closeClient(client)

		ctx, cancel := commandContext()
		defer cancel()

		list, err := client.ListTokens(ctx, tokenPage, tokenPageSize)
		if err != nil {
			printRegistryError(err)
			return err
		}

		// 表格模式走富渲染，其余格式交给通用格式化器
		if output.ParseFormat(globalFlags.OutputFormat) == output.FormatTable {
			return renderTokenTable(list)
		}

		return formatter.Print(list)
	},
}

// tokenExportCmd 导出整个注册表
var tokenExportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出注册表",
	Long: `翻页拉取全部注册记录并写入文件。

默认写出Snappy压缩的JSON（适合归档传输）；--snappy=false 写出明文美化JSON。

示例：
  relayerctl token export
  relayerctl token export --out tokens.json --snappy=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := getClient()
		defer closeClient(client)

		ctx, cancel := commandContext()
		defer cancel()

		spinner, _ := components.StartSpinner("正在拉取注册表 ...")

		records := make([]relayer.TokenRecord, 0)
		for page := 1; ; page++ {
			list, err := client.ListTokens(ctx, page, exportPageSize)
			if err != nil {
				if spinner != nil {
					spinner.Fail("拉取注册表失败")
				}
				printRegistryError(err)
				return err
			}

			records = append(records, list.Tokens...)
			if !list.Pagination.HasNext {
				break
			}
		}

		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			if spinner != nil {
				spinner.Fail("序列化失败")
			}
			return fmt.Errorf("序列化注册表失败: %w", err)
		}

		if tokenExportSnappy {
			data = snappy.Encode(nil, data)
		}

		if err := os.WriteFile(tokenExportOut, data, 0644); err != nil {
			if spinner != nil {
				spinner.Fail("写入文件失败")
			}
			return fmt.Errorf("写入导出文件失败: %w", err)
		}

		if spinner != nil {
			spinner.Success(fmt.Sprintf("已导出 %d 条记录", len(records)))
		}

		return formatter.Print(map[string]interface{}{
			"file":       tokenExportOut,
			"records":    len(records),
			"bytes":      len(data),
			"compressed": tokenExportSnappy,
		})
	},
}

// renderTokenTable 用富表格渲染注册记录列表
func renderTokenTable(list *relayer.TokenList) error {
	if len(list.Tokens) == 0 {
		formatter.PrintInfo("注册表为空")
		return nil
	}

	data := [][]string{{"Mint", "兑换汇率", "最大原生币兑换额度", "原生资产"}}
	for _, record := range list.Tokens {
		native := "-"
		if record.IsNative {
			native = "是"
		}
		data = append(data, []string{
			record.Mint,
			strconv.FormatUint(record.SwapRate, 10),
			strconv.FormatUint(record.MaxNativeSwapAmount, 10),
			native,
		})
	}

	title := fmt.Sprintf("注册表 (第 %d/%d 页, 共 %d 条)",
		list.Pagination.Page, list.Pagination.TotalPages, list.Pagination.TotalItems)
	if err := components.ShowTable(title, data); err != nil {
		return err
	}

	if list.Pagination.HasNext {
		formatter.PrintInfo(fmt.Sprintf("使用 --page %d 查看下一页", list.Pagination.Page+1))
	}
	return nil
}

// tokenRecordMap 将注册记录转为输出用的map
func tokenRecordMap(record *relayer.TokenRecord) map[string]interface{} {
	return map[string]interface{}{
		"mint":                   record.Mint,
		"swap_rate":              record.SwapRate,
		"max_native_swap_amount": record.MaxNativeSwapAmount,
		"is_registered":          record.IsRegistered,
		"is_native":              record.IsNative,
	}
}

// printRegistryError 打印服务端错误（结构化错误附带错误码和提示）
func printRegistryError(err error) {
	var apiErr *relayer.APIError
	if errors.As(err, &apiErr) {
		formatter.PrintError(err)
		if apiErr.IsRetryable() {
			formatter.PrintInfo("该错误可重试，请稍后再次执行")
		}
		return
	}
	formatter.PrintError(err)
}

// resolveOwnerPrincipal 确定调用者身份：标志 > 环境变量
func resolveOwnerPrincipal() string {
	if tokenOwner != "" {
		return tokenOwner
	}
	return os.Getenv("TBR_OWNER")
}

func init() {
	tokenCmd.AddCommand(tokenRegisterCmd)
	tokenCmd.AddCommand(tokenShowCmd)
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenExportCmd)

	// tokenRegisterCmd 标志
	tokenRegisterCmd.Flags().Uint64Var(&tokenSwapRate, "swap-rate", 0, "兑换汇率（必填，必须大于0）")
	tokenRegisterCmd.Flags().Uint64Var(&tokenMaxNativeSwap, "max-native-swap-amount", 0, "最大原生币兑换额度（原生资产必须为0）")
	tokenRegisterCmd.Flags().StringVar(&tokenOwner, "owner", "", "调用者身份（默认取 TBR_OWNER 环境变量）")
	_ = tokenRegisterCmd.MarkFlagRequired("swap-rate")

	// tokenListCmd 标志
	tokenListCmd.Flags().IntVar(&tokenPage, "page", 1, "页码（从1开始）")
	tokenListCmd.Flags().IntVar(&tokenPageSize, "page-size", 20, "每页条数")

	// tokenExportCmd 标志
	tokenExportCmd.Flags().StringVar(&tokenExportOut, "out", "tokens.json.snappy", "导出文件路径")
	tokenExportCmd.Flags().BoolVar(&tokenExportSnappy, "snappy", true, "使用Snappy压缩导出内容")
}

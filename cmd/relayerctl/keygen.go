package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"strings"
	"syscall"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
	bip39 "github.com/tyler-smith/go-bip39"
	"golang.org/x/term"

	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

var (
	keygenWords            int
	keygenPassphrase       string
	keygenPromptPassphrase bool
	keygenShowPrivate      bool
)

// keygenCmd 密钥生成相关命令
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "所有者密钥管理",
	Long:  "生成BIP39助记词、派生所有者公钥、验证助记词",
}

// keygenNewCmd 生成新密钥对
var keygenNewCmd = &cobra.Command{
	Use:   "new",
	Short: "生成新的所有者密钥对",
	Long: `生成BIP39助记词并派生Ed25519所有者密钥对。

助记词仅显示一次,请立即离线备份。派生出的公钥（base58）
可直接用于 owner init 和 token register 的身份参数。

示例：
  relayerctl keygen new                       # 24词助记词
  relayerctl keygen new --words 12            # 12词助记词
  relayerctl keygen new --prompt-passphrase   # 附加BIP39密码短语`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strength, err := strengthForWords(keygenWords)
		if err != nil {
			return err
		}

		passphrase, err := resolvePassphrase()
		if err != nil {
			return err
		}

		// 生成熵并转为助记词
		entropy := make([]byte, strength/8)
		if _, err := rand.Read(entropy); err != nil {
			return fmt.Errorf("生成熵失败: %w", err)
		}
		mnemonic, err := bip39.NewMnemonic(entropy)
		if err != nil {
			return fmt.Errorf("生成助记词失败: %w", err)
		}

		principal, privateKey, err := derivePrincipal(mnemonic, passphrase)
		if err != nil {
			return err
		}

		formatter.PrintSuccess(fmt.Sprintf("密钥对生成成功: %s", principal))
		formatter.PrintWarning("请务必安全备份以下助记词，丢失将无法恢复密钥:")
		fmt.Println()
		fmt.Printf("  %s\n", mnemonic)
		fmt.Println()

		result := map[string]interface{}{
			"principal":  principal.String(),
			"word_count": keygenWords,
			"strength":   fmt.Sprintf("%d bits", strength),
		}
		if keygenShowPrivate {
			result["private_key"] = base58.Encode(privateKey)
		}
		return formatter.Print(result)
	},
}

// keygenDeriveCmd 从助记词派生公钥
var keygenDeriveCmd = &cobra.Command{
	Use:   "derive <mnemonic>",
	Short: "从助记词派生所有者公钥",
	Long: `从已有助记词重新派生所有者公钥。

用于核对备份的助记词对应的身份，不产生任何新密钥。

示例：
  relayerctl keygen derive "word1 word2 ... word12"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mnemonic := normalizeMnemonic(args[0])

		if valid, msg := validateMnemonicDetails(mnemonic); !valid {
			return fmt.Errorf("无效的助记词: %s", msg)
		}

		passphrase, err := resolvePassphrase()
		if err != nil {
			return err
		}

		principal, privateKey, err := derivePrincipal(mnemonic, passphrase)
		if err != nil {
			return err
		}

		result := map[string]interface{}{
			"principal":  principal.String(),
			"word_count": wordCount(mnemonic),
		}
		if keygenShowPrivate {
			result["private_key"] = base58.Encode(privateKey)
		}
		return formatter.Print(result)
	},
}

// keygenValidateCmd 验证助记词
var keygenValidateCmd = &cobra.Command{
	Use:   "validate-mnemonic <mnemonic>",
	Short: "验证助记词",
	Long:  "验证BIP39助记词是否有效",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mnemonic := normalizeMnemonic(args[0])

		valid, msg := validateMnemonicDetails(mnemonic)
		if valid {
			formatter.PrintSuccess("助记词有效")
			return formatter.Print(map[string]interface{}{
				"valid":      true,
				"word_count": wordCount(mnemonic),
			})
		}

		formatter.PrintError(fmt.Errorf("助记词无效: %s", msg))
		return formatter.Print(map[string]interface{}{
			"valid":  false,
			"reason": msg,
		})
	},
}

// derivePrincipal 从助记词派生Ed25519密钥对并返回身份公钥
//
// 种子取BIP39标准的PBKDF2输出，截取前32字节作为Ed25519种子。
func derivePrincipal(mnemonic, passphrase string) (types.Principal, ed25519.PrivateKey, error) {
	seed := bip39.NewSeed(mnemonic, passphrase)
	privateKey := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	publicKey := privateKey.Public().(ed25519.PublicKey)

	principal, err := types.PrincipalFromBytes(publicKey)
	if err != nil {
		return types.Principal{}, nil, fmt.Errorf("派生身份失败: %w", err)
	}
	return principal, privateKey, nil
}

// strengthForWords 将助记词数量映射为熵位数
func strengthForWords(words int) (int, error) {
	switch words {
	case 12:
		return 128, nil
	case 15:
		return 160, nil
	case 18:
		return 192, nil
	case 21:
		return 224, nil
	case 24:
		return 256, nil
	default:
		return 0, fmt.Errorf("无效的助记词数量: %d，支持 12, 15, 18, 21, 24", words)
	}
}

// validateMnemonicDetails 验证助记词并返回详细原因
func validateMnemonicDetails(mnemonic string) (bool, string) {
	if mnemonic == "" {
		return false, "助记词不能为空"
	}

	words := strings.Split(mnemonic, " ")
	if _, err := strengthForWords(len(words)); err != nil {
		return false, fmt.Sprintf("助记词数量无效: %d，应为 12, 15, 18, 21 或 24", len(words))
	}

	// 逐词检查词表，给出比整体校验更准确的提示
	wordSet := make(map[string]bool)
	for _, word := range bip39.GetWordList() {
		wordSet[word] = true
	}
	for i, word := range words {
		if !wordSet[word] {
			return false, fmt.Sprintf("第 %d 个单词 '%s' 不在 BIP39 词表中", i+1, word)
		}
	}

	if !bip39.IsMnemonicValid(mnemonic) {
		return false, "校验和验证失败，请检查助记词是否正确"
	}

	return true, "助记词有效"
}

// normalizeMnemonic 规范化助记词（去首尾空白、压缩连续空格）
func normalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}

// wordCount 统计助记词单词数量
func wordCount(mnemonic string) int {
	if mnemonic == "" {
		return 0
	}
	return len(strings.Split(mnemonic, " "))
}

// resolvePassphrase 确定BIP39密码短语
//
// --prompt-passphrase 时走隐藏输入并二次确认，否则使用 --passphrase 的值。
func resolvePassphrase() (string, error) {
	if !keygenPromptPassphrase {
		return keygenPassphrase, nil
	}

	passphrase, err := promptPassword("请输入BIP39密码短语")
	if err != nil {
		return "", err
	}
	confirm, err := promptPassword("请确认密码短语")
	if err != nil {
		return "", err
	}
	if passphrase != confirm {
		return "", fmt.Errorf("密码短语不匹配")
	}
	return passphrase, nil
}

// promptPassword 提示输入密码（不回显）
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt + ": ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("读取密码失败: %w", err)
	}
	fmt.Println()
	return string(bytePassword), nil
}

func init() {
	keygenCmd.AddCommand(keygenNewCmd)
	keygenCmd.AddCommand(keygenDeriveCmd)
	keygenCmd.AddCommand(keygenValidateCmd)

	// keygenNewCmd 标志
	keygenNewCmd.Flags().IntVarP(&keygenWords, "words", "w", 24, "助记词数量 (12, 15, 18, 21, 24)")
	keygenNewCmd.Flags().StringVar(&keygenPassphrase, "passphrase", "", "BIP39密码短语（可选，用于额外安全）")
	keygenNewCmd.Flags().BoolVar(&keygenPromptPassphrase, "prompt-passphrase", false, "交互式输入密码短语（不回显）")
	keygenNewCmd.Flags().BoolVar(&keygenShowPrivate, "show-private", false, "输出中包含私钥（base58）")

	// keygenDeriveCmd 标志
	keygenDeriveCmd.Flags().StringVar(&keygenPassphrase, "passphrase", "", "BIP39密码短语")
	keygenDeriveCmd.Flags().BoolVar(&keygenPromptPassphrase, "prompt-passphrase", false, "交互式输入密码短语（不回显）")
	keygenDeriveCmd.Flags().BoolVar(&keygenShowPrivate, "show-private", false, "输出中包含私钥（base58）")
}

// Package ux 提供终端交互组件（表格、确认对话框、进度指示）。
package ux

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Theme 界面主题配色
type Theme struct {
	PrimaryColor pterm.Color // 主色调
	SuccessColor pterm.Color // 成功色
	WarningColor pterm.Color // 警告色
	ErrorColor   pterm.Color // 错误色
	InfoColor    pterm.Color // 信息色
}

// DefaultTheme 默认主题
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor: pterm.FgLightBlue,
		SuccessColor: pterm.FgGreen,
		WarningColor: pterm.FgYellow,
		ErrorColor:   pterm.FgRed,
		InfoColor:    pterm.FgCyan,
	}
}

// Components 终端交互组件集合
type Components struct {
	theme Theme
}

// NewComponents 创建组件集合
func NewComponents() *Components {
	return &Components{theme: DefaultTheme()}
}

// ShowTable 渲染表格（data首行为表头）
func (c *Components) ShowTable(title string, data [][]string) error {
	if len(data) == 0 {
		return fmt.Errorf("表格数据为空")
	}

	if title != "" {
		pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(c.theme.PrimaryColor)).
			Println(title)
	}

	table := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-")
	return table.WithData(data).Render()
}

// ShowKeyValuePairs 渲染键值对表格
func (c *Components) ShowKeyValuePairs(title string, pairs [][2]string) error {
	if title != "" {
		pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(c.theme.PrimaryColor)).
			Println(title)
	}

	data := [][]string{{"项目", "值"}}
	for _, pair := range pairs {
		data = append(data, []string{pair[0], pair[1]})
	}

	table := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-")
	return table.WithData(data).Render()
}

// ConfirmDialog 显示确认对话框（默认取消）
func (c *Components) ConfirmDialog(title, message string) (bool, error) {
	if title != "" {
		pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(c.theme.WarningColor)).
			Println(title)
		pterm.Println()
	}

	pterm.Info.Println(message)
	pterm.Println()

	result, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText("确认继续吗？").
		WithDefaultValue(false).
		Show()

	if err != nil {
		return false, fmt.Errorf("确认对话框失败: %v", err)
	}

	return result, nil
}

// StartSpinner 启动进度指示器
func (c *Components) StartSpinner(message string) (*pterm.SpinnerPrinter, error) {
	return pterm.DefaultSpinner.WithText(message).Start()
}

// Package output 提供客户端命令的输出格式化能力。
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// Format 输出格式
type Format string

const (
	// FormatJSON JSON格式（默认）
	FormatJSON Format = "json"
	// FormatPretty 美化JSON格式
	FormatPretty Format = "pretty"
	// FormatTable 表格格式
	FormatTable Format = "table"
	// FormatText 纯文本格式
	FormatText Format = "text"
)

// ParseFormat 解析输出格式，未知值回退到JSON
func ParseFormat(s string) Format {
	switch Format(s) {
	case FormatJSON, FormatPretty, FormatTable, FormatText:
		return Format(s)
	default:
		return FormatJSON
	}
}

// Formatter 输出格式化器
//
// 数据走writer（默认stdout），提示消息走logWriter（默认stderr），
// 这样管道消费JSON输出时不会混入状态文本。
type Formatter struct {
	format    Format
	writer    io.Writer
	logWriter io.Writer
	silent    bool
}

// NewFormatter 创建格式化器
func NewFormatter(format Format, writer io.Writer) *Formatter {
	if writer == nil {
		writer = os.Stdout
	}

	return &Formatter{
		format:    format,
		writer:    writer,
		logWriter: os.Stderr,
	}
}

// SetLogWriter 设置提示消息输出目标（默认stderr）
func (f *Formatter) SetLogWriter(writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	f.logWriter = writer
}

// SetSilent 设置静默模式
func (f *Formatter) SetSilent(silent bool) {
	f.silent = silent
}

// Print 打印数据
func (f *Formatter) Print(data interface{}) error {
	if f.silent {
		return nil
	}

	switch f.format {
	case FormatPretty:
		return f.printJSON(data, true)
	case FormatTable:
		return f.printTable(data)
	case FormatText:
		return f.printText(data)
	default:
		return f.printJSON(data, false)
	}
}

// printJSON 打印JSON格式
func (f *Formatter) printJSON(data interface{}, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := fmt.Fprintln(f.writer, string(output)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// printTable 打印表格格式
func (f *Formatter) printTable(data interface{}) error {
	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	defer func() {
		_ = tw.Flush() // 可能已写入部分数据，忽略flush错误
	}()

	switch v := data.(type) {
	case map[string]interface{}:
		return f.printMapTable(tw, v)
	case []map[string]interface{}:
		return f.printRowsTable(tw, v)
	default:
		// 其他类型降级为美化JSON
		return f.printJSON(data, true)
	}
}

// printMapTable 打印键值对表格（按键排序保证输出稳定）
func (f *Formatter) printMapTable(tw *tabwriter.Writer, data map[string]interface{}) error {
	if _, err := fmt.Fprintln(tw, "Key\tValue"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "---\t-----"); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(tw, "%s\t%v\n", key, formatValue(data[key])); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	return nil
}

// printRowsTable 打印多行记录表格
func (f *Formatter) printRowsTable(tw *tabwriter.Writer, rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	columns := extractColumns(rows)

	if _, err := fmt.Fprintln(tw, strings.Join(columns, "\t")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, strings.Repeat("---\t", len(columns))); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	for _, row := range rows {
		values := make([]string, len(columns))
		for i, col := range columns {
			if val, ok := row[col]; ok {
				values[i] = formatValue(val)
			} else {
				values[i] = "-"
			}
		}
		if _, err := fmt.Fprintln(tw, strings.Join(values, "\t")); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	return nil
}

// printText 打印纯文本格式
func (f *Formatter) printText(data interface{}) error {
	if _, err := fmt.Fprintf(f.writer, "%v\n", data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// PrintSuccess 打印成功消息（走stderr，避免污染JSON输出）
func (f *Formatter) PrintSuccess(message string) {
	if f.silent {
		return
	}
	fmt.Fprintf(f.logWriter, "✅ %s\n", message)
}

// PrintError 打印错误消息（走stderr，避免污染JSON输出）
func (f *Formatter) PrintError(err error) {
	fmt.Fprintf(f.logWriter, "❌ Error: %v\n", err)
}

// PrintWarning 打印警告消息（走stderr，避免污染JSON输出）
func (f *Formatter) PrintWarning(message string) {
	if f.silent {
		return
	}
	fmt.Fprintf(f.logWriter, "⚠️  %s\n", message)
}

// PrintInfo 打印信息消息（走stderr，避免污染JSON输出）
func (f *Formatter) PrintInfo(message string) {
	if f.silent {
		return
	}
	fmt.Fprintf(f.logWriter, "ℹ️  %s\n", message)
}

// ===== 辅助函数 =====

// formatValue 格式化单元格值
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int, int64, uint, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case time.Time:
		return v.Format(time.RFC3339)
	case nil:
		return "-"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// extractColumns 提取所有出现过的列名（保持首次出现顺序）
func extractColumns(rows []map[string]interface{}) []string {
	columnSet := make(map[string]bool)
	columns := make([]string, 0)

	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for key := range row {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !columnSet[key] {
				columnSet[key] = true
				columns = append(columns, key)
			}
		}
	}

	return columns
}

package log

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/log"
)

// captureOutput 捕获标准输出
func captureOutput(f func()) string {
	// 保存原始的标准输出
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// 备份全局日志记录器
	mu.RLock()
	oldLogger := globalLogger
	mu.RUnlock()

	// 设置标准输出的日志记录器
	options := &logconfig.LogOptions{
		Level:     InfoLevel,
		FilePath:  "stdout",
		ToConsole: true,
	}
	logConfig := logconfig.New(options)
	logger, _ := New(logConfig)
	SetLogger(logger)

	// 执行测试函数
	f()

	// 确保所有日志被写入
	logger.Sync()

	// 恢复原始的标准输出
	w.Close()
	os.Stdout = oldStdout

	// 恢复原始的日志记录器
	SetLogger(oldLogger)

	// 读取捕获的输出
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// TestInfoLog 测试信息级别日志
func TestInfoLog(t *testing.T) {
	output := captureOutput(func() {
		Info("测试信息日志")
	})

	if !strings.Contains(output, "测试信息日志") {
		t.Error("日志输出中应包含消息内容")
	}

	if !strings.Contains(output, "\"level\":\"info\"") && !strings.Contains(output, "INFO") {
		t.Error("日志输出中应包含正确的日志级别")
	}
}

// TestStructuredLogging 测试结构化日志
func TestStructuredLogging(t *testing.T) {
	output := captureOutput(func() {
		With("key1", "value1", "key2", 42).Info("结构化日志测试")
	})

	// 尝试解析JSON输出，如果不是有效的JSON，则跳过这部分测试
	var logEntry map[string]interface{}
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Logf("日志输出不是标准JSON格式，将使用字符串匹配: %v", err)

		// 使用字符串匹配代替JSON解析
		if !strings.Contains(output, "key1") || !strings.Contains(output, "value1") {
			t.Error("日志输出中应包含key1=value1")
		}
		if !strings.Contains(output, "key2") || !strings.Contains(output, "42") {
			t.Error("日志输出中应包含key2=42")
		}
		if !strings.Contains(output, "结构化日志测试") {
			t.Error("日志输出中应包含消息内容")
		}
		return
	}

	// 验证结构化字段
	if logEntry["key1"] != "value1" {
		t.Errorf("未找到key1字段或值不正确，期望 'value1'，实际 '%v'", logEntry["key1"])
	}

	if int(logEntry["key2"].(float64)) != 42 {
		t.Errorf("未找到key2字段或值不正确，期望 42，实际 %v", logEntry["key2"])
	}

	if logEntry["msg"] != "结构化日志测试" {
		t.Errorf("未找到msg字段或值不正确，期望 '结构化日志测试'，实际 '%v'", logEntry["msg"])
	}
}

// TestFileLog 测试文件输出（JSON编码）
func TestFileLog(t *testing.T) {
	// 创建临时日志目录
	tempDir, err := os.MkdirTemp("", "log_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	// 创建日志文件路径
	logPath := filepath.Join(tempDir, "test.log")

	// 创建带有文件输出的日志记录器
	options := &logconfig.LogOptions{
		Level:     DebugLevel,
		FilePath:  logPath,
		ToConsole: false,
	}
	logConfig := logconfig.New(options)

	logger, err := New(logConfig)
	if err != nil {
		t.Fatalf("创建日志记录器失败: %v", err)
	}

	// 记录不同级别的日志
	logger.Debug("调试日志")
	logger.Info("信息日志")
	logger.Warn("警告日志")
	logger.Error("错误日志")
	// 不测试Fatal，因为它会终止程序

	// 确保所有日志被写入
	logger.Sync()

	// 读取日志文件内容
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("无法读取日志文件: %v", err)
	}

	contentStr := string(content)

	// 检查日志内容是否包含各个级别的日志
	if !strings.Contains(contentStr, "调试日志") {
		t.Error("日志文件中应包含调试日志")
	}
	if !strings.Contains(contentStr, "信息日志") {
		t.Error("日志文件中应包含信息日志")
	}
	if !strings.Contains(contentStr, "警告日志") {
		t.Error("日志文件中应包含警告日志")
	}
	if !strings.Contains(contentStr, "错误日志") {
		t.Error("日志文件中应包含错误日志")
	}

	// 文件输出使用JSON编码
	if !strings.Contains(contentStr, "\"level\":\"info\"") {
		t.Error("日志文件应使用JSON编码")
	}
}

// TestConsoleLog 测试控制台格式日志
func TestConsoleLog(t *testing.T) {
	options := &logconfig.LogOptions{
		Level:     InfoLevel,
		FilePath:  "stdout",
		ToConsole: true,
	}
	logConfig := logconfig.New(options)

	// 保存原始的标准输出
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// 创建日志记录器
	logger, err := New(logConfig)
	if err != nil {
		t.Fatalf("创建日志记录器失败: %v", err)
	}

	// 记录日志
	logger.Info("测试控制台日志")
	logger.Sync()

	// 恢复标准输出
	w.Close()
	os.Stdout = oldStdout

	// 读取输出
	var buf bytes.Buffer
	io.Copy(&buf, r)
	output := buf.String()

	// 验证输出内容
	if !strings.Contains(output, "INFO") && !strings.Contains(output, "info") {
		t.Error("控制台日志应该包含INFO级别")
	}
	if !strings.Contains(output, "测试控制台日志") {
		t.Error("控制台日志应该包含消息内容")
	}
}

// TestSetLogger 测试设置和切换全局日志记录器
func TestSetLogger(t *testing.T) {
	// 备份原始日志记录器
	mu.RLock()
	originalLogger := globalLogger
	mu.RUnlock()

	// 创建第一个日志记录器
	options1 := &logconfig.LogOptions{
		Level:     InfoLevel,
		FilePath:  "stdout",
		ToConsole: true,
	}
	config1 := logconfig.New(options1)
	logger1, _ := New(config1)

	// 创建第二个日志记录器
	options2 := &logconfig.LogOptions{
		Level:     WarnLevel,
		FilePath:  "stdout",
		ToConsole: true,
	}
	config2 := logconfig.New(options2)
	logger2, _ := New(config2)

	// 设置全局日志记录器为logger1
	SetLogger(logger1)
	mu.RLock()
	if globalLogger != logger1 {
		t.Error("SetLogger应将全局日志记录器设置为logger1")
	}
	mu.RUnlock()

	// 设置全局日志记录器为logger2
	SetLogger(logger2)
	mu.RLock()
	if globalLogger != logger2 {
		t.Error("SetLogger应将全局日志记录器设置为logger2")
	}
	mu.RUnlock()

	// 恢复原始日志记录器
	SetLogger(originalLogger)
}

// TestResetDefault 测试重置默认日志记录器
func TestResetDefault(t *testing.T) {
	// 备份原始日志记录器
	mu.RLock()
	originalLogger := globalLogger
	mu.RUnlock()

	// 创建自定义日志记录器
	options := &logconfig.LogOptions{
		Level:     WarnLevel,
		FilePath:  "stdout",
		ToConsole: true,
	}
	logConfig := logconfig.New(options)
	customLogger, _ := New(logConfig)

	// 设置全局日志记录器为自定义日志记录器
	SetLogger(customLogger)

	// 重置默认日志记录器
	ResetDefault()

	// 验证全局日志记录器已重置
	mu.RLock()
	resetLogger := globalLogger
	mu.RUnlock()

	if resetLogger == customLogger {
		t.Error("ResetDefault应该将全局日志记录器重置为默认配置")
	}

	// 恢复原始日志记录器
	SetLogger(originalLogger)
}

package config

import (
	"fmt"
	"strings"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level debug / info / warn / error
	//
	// 不读取环境变量：BROKER_LOG_LEVEL 由日志包按子系统解析。
	Level string `json:"level" yaml:"level"`

	// File 日志文件，为空时输出到 stderr
	File string `json:"file" yaml:"file" env:"FILE"`

	// FxDebug 输出 Fx 依赖注入事件
	FxDebug bool `json:"fx_debug" yaml:"fx_debug" env:"FX_DEBUG"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info"}
}

// Validate 验证日志配置
func (c *LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
}

package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format 日志输出格式
type Format int

const (
	// FormatText 文本格式（默认）
	FormatText Format = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Levels 日志级别配置
//
// 环境变量:
//   - BROKER_LOG_LEVEL: 子系统=级别,子系统=级别,默认级别
//     示例: multiplexing=debug,storage=warn,info
//   - BROKER_LOG_FORMAT: text 或 json
type Levels struct {
	// Default 默认级别；未配置时不做过滤，交由 handler 决定
	Default *slog.Level

	// Subsystems 各子系统级别
	//
	// 键可以是完整组件名（core/multiplexing）或最后一段（multiplexing）。
	Subsystems map[string]slog.Level

	// Format 输出格式
	Format Format
}

var (
	levelsCache *Levels
	levelsOnce  sync.Once
)

// LevelsFromEnv 从环境变量解析级别配置（结果会被缓存）
func LevelsFromEnv() *Levels {
	levelsOnce.Do(func() {
		levelsCache = ParseLevels(os.Getenv("BROKER_LOG_LEVEL"), os.Getenv("BROKER_LOG_FORMAT"))
	})
	return levelsCache
}

// ResetLevels 重置缓存（仅用于测试）
func ResetLevels() {
	levelsOnce = sync.Once{}
	levelsCache = nil
}

// ParseLevels 解析级别与格式字符串
func ParseLevels(levelStr, formatStr string) *Levels {
	lv := &Levels{Subsystems: make(map[string]slog.Level)}

	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, value, ok := strings.Cut(part, "="); ok {
			if level, ok := ParseLevel(value); ok {
				lv.Subsystems[strings.TrimSpace(name)] = level
			}
			continue
		}
		if level, ok := ParseLevel(part); ok {
			lv.Default = &level
		}
	}

	if strings.EqualFold(strings.TrimSpace(formatStr), "json") {
		lv.Format = FormatJSON
	}
	return lv
}

// Enabled 判断组件在该级别是否输出
func (lv *Levels) Enabled(component string, level slog.Level) bool {
	if min, ok := lv.levelFor(component); ok {
		return level >= min
	}
	return true
}

func (lv *Levels) levelFor(component string) (slog.Level, bool) {
	if level, ok := lv.Subsystems[component]; ok {
		return level, true
	}
	if i := strings.LastIndexByte(component, '/'); i >= 0 {
		if level, ok := lv.Subsystems[component[i+1:]]; ok {
			return level, true
		}
	}
	if lv.Default != nil {
		return *lv.Default, true
	}
	return 0, false
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Lowest 返回配置中最低的级别，用于设置 handler 级别
func (lv *Levels) Lowest() slog.Level {
	lowest := slog.LevelInfo
	if lv.Default != nil {
		lowest = *lv.Default
	}
	for _, level := range lv.Subsystems {
		if level < lowest {
			lowest = level
		}
	}
	return lowest
}

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config 存储引擎配置
//
// 测试代码应使用 t.TempDir() 创建临时目录。
type Config struct {
	// Path 数据目录路径（必需）
	Path string

	// SyncWrites 每次写入都同步到磁盘
	//
	// 缓存回退要求停止期间的事件在进程崩溃后仍可恢复时开启。
	SyncWrites bool

	// ReadOnly 只读模式
	ReadOnly bool

	// Badger 特定选项
	Badger BadgerOptions
}

// BadgerOptions BadgerDB 特定选项
type BadgerOptions struct {
	// MemTableSize 内存表大小（字节），默认 16MB
	MemTableSize int64

	// ValueLogFileSize 值日志文件大小（字节），默认 256MB
	ValueLogFileSize int64

	// ValueThreshold 大于此值的 value 存入值日志，默认 1KB
	ValueThreshold int64

	// BlockCacheSize 块缓存大小（字节），默认 64MB
	BlockCacheSize int64

	// NumCompactors 压缩器数量，默认 2
	NumCompactors int

	// ZSTDCompressionLevel ZSTD 压缩级别，0 禁用
	ZSTDCompressionLevel int

	// GCInterval 值日志 GC 间隔，0 禁用
	GCInterval time.Duration

	// GCDiscardRatio 值日志 GC 丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回默认配置
func DefaultConfig(path string) *Config {
	return &Config{
		Path:   path,
		Badger: DefaultBadgerOptions(),
	}
}

// DefaultBadgerOptions 返回默认 BadgerDB 选项
//
// 事件缓存是短生命周期的队列数据，内存占用比通用 KV 场景小。
func DefaultBadgerOptions() BadgerOptions {
	return BadgerOptions{
		MemTableSize:         16 << 20,  // 16MB
		ValueLogFileSize:     256 << 20, // 256MB
		ValueThreshold:       1 << 10,   // 1KB
		BlockCacheSize:       64 << 20,  // 64MB
		NumCompactors:        2,
		ZSTDCompressionLevel: 1,
		GCInterval:           10 * time.Minute,
		GCDiscardRatio:       0.5,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidConfig)
	}
	if c.Badger.MemTableSize < 1<<20 {
		return fmt.Errorf("%w: mem_table_size below 1MB", ErrInvalidConfig)
	}
	if c.Badger.ValueLogFileSize < 1<<20 {
		return fmt.Errorf("%w: value_log_file_size below 1MB", ErrInvalidConfig)
	}
	if c.Badger.NumCompactors < 2 {
		// badger 要求至少 2 个压缩器
		return fmt.Errorf("%w: num_compactors below 2", ErrInvalidConfig)
	}
	return nil
}

// EnsureDir 确保数据目录存在
func (c *Config) EnsureDir() error {
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath
	return os.MkdirAll(c.Path, 0755)
}

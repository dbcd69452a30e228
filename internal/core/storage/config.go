package storage

import (
	"time"

	"github.com/centreon/go-broker/config"
	"github.com/centreon/go-broker/internal/core/storage/engine"
)

// 键空间前缀
var (
	// CachePrefix 停止模式事件缓存
	CachePrefix = []byte("c/")

	// SpoolPrefix Muxer 溢出队列，后接 "<name>/"
	SpoolPrefix = []byte("q/")
)

// Config Storage 模块配置
type Config struct {
	// Path BadgerDB 数据库目录，为空表示不启用持久化
	Path string

	// SyncWrites 是否同步写入
	SyncWrites bool

	// GCInterval 值日志 GC 间隔，0 禁用
	GCInterval time.Duration
}

// DefaultConfig 返回默认配置（不启用持久化）
func DefaultConfig() Config {
	return Config{
		GCInterval: 10 * time.Minute,
	}
}

// ConfigFromUnified 从统一配置创建 Storage 配置
func ConfigFromUnified(cfg *config.Config) Config {
	storageCfg := DefaultConfig()
	if cfg == nil {
		return storageCfg
	}

	if cfg.Storage.Enabled() {
		storageCfg.Path = cfg.Storage.DBPath()
	}
	storageCfg.SyncWrites = cfg.Storage.SyncWrites
	storageCfg.GCInterval = cfg.Storage.GCInterval.Duration()
	return storageCfg
}

// Enabled 是否启用持久化
func (c *Config) Enabled() bool {
	return c.Path != ""
}

// ToEngineConfig 转换为引擎配置
func (c *Config) ToEngineConfig() *engine.Config {
	engineCfg := engine.DefaultConfig(c.Path)
	engineCfg.SyncWrites = c.SyncWrites
	engineCfg.Badger.GCInterval = c.GCInterval
	return engineCfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.GCInterval > 0 && c.GCInterval < time.Minute {
		c.GCInterval = time.Minute
	}
	return nil
}

package config

import (
	"path/filepath"
	"time"
)

// StorageConfig 存储配置
//
// 数据目录结构：
//
//	${DataDir}/
//	└── broker.db/          # BadgerDB（缓存回退 + Muxer 溢出队列）
//
// DataDir 为空时不落盘：缓存和溢出队列使用内存实现，进程退出即丢失。
type StorageConfig struct {
	// DataDir 数据目录路径
	DataDir string `json:"data_dir" yaml:"data_dir" env:"DATA_DIR"`

	// SyncWrites 每次写入同步到磁盘
	SyncWrites bool `json:"sync_writes" yaml:"sync_writes" env:"SYNC_WRITES"`

	// GCInterval 值日志 GC 间隔
	GCInterval Duration `json:"gc_interval" yaml:"gc_interval" env:"GC_INTERVAL"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		GCInterval: Duration(10 * time.Minute),
	}
}

// Validate 验证存储配置的有效性
func (c *StorageConfig) Validate() error {
	return nil
}

// Enabled 是否启用持久化
func (c *StorageConfig) Enabled() bool {
	return c.DataDir != ""
}

// DBPath 返回 BadgerDB 数据库路径
func (c *StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "broker.db")
}

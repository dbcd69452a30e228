package config

import "errors"

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	// Enabled 是否注册指标
	Enabled bool `json:"enabled" yaml:"enabled" env:"ENABLED"`

	// Namespace 指标名前缀
	Namespace string `json:"namespace" yaml:"namespace" env:"NAMESPACE"`

	// ListenAddr /metrics HTTP 监听地址，为空时不启动 HTTP 服务
	ListenAddr string `json:"listen_addr" yaml:"listen_addr" env:"LISTEN_ADDR"`

	// SnapshotInterval 运行快照日志间隔，0 表示关闭
	SnapshotInterval Duration `json:"snapshot_interval" yaml:"snapshot_interval" env:"SNAPSHOT_INTERVAL"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "broker",
	}
}

// Validate 验证指标配置
func (c *MetricsConfig) Validate() error {
	if c.Enabled && c.Namespace == "" {
		return errors.New("namespace cannot be empty")
	}
	if c.SnapshotInterval < 0 {
		return errors.New("snapshot_interval cannot be negative")
	}
	return nil
}

// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON / YAML 文件加载（load.go）
//   - 支持 BROKER_ 前缀的环境变量覆盖（env.go）
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Storage.DataDir = "/var/lib/broker"
//
//	cfg, err := config.LoadFile("broker.yaml")
package config

import (
	"errors"
	"fmt"
)

// Config broker 的完整配置
type Config struct {
	// Engine 多路复用引擎
	Engine EngineConfig `json:"engine" yaml:"engine" envPrefix:"ENGINE_"`

	// Muxer 订阅队列
	Muxer MuxerConfig `json:"muxer" yaml:"muxer" envPrefix:"MUXER_"`

	// Feedback Muxer 回送路径
	Feedback FeedbackConfig `json:"feedback" yaml:"feedback" envPrefix:"FEEDBACK_"`

	// Codec 帧解码
	Codec CodecConfig `json:"codec" yaml:"codec" envPrefix:"CODEC_"`

	// Storage 持久化存储
	Storage StorageConfig `json:"storage" yaml:"storage" envPrefix:"STORAGE_"`

	// Metrics Prometheus 指标
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" envPrefix:"METRICS_"`

	// Log 日志
	Log LogConfig `json:"log" yaml:"log" envPrefix:"LOG_"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Engine:   DefaultEngineConfig(),
		Muxer:    DefaultMuxerConfig(),
		Feedback: DefaultFeedbackConfig(),
		Codec:    DefaultCodecConfig(),
		Storage:  DefaultStorageConfig(),
		Metrics:  DefaultMetricsConfig(),
		Log:      DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	validators := []struct {
		name string
		fn   func() error
	}{
		{"engine", c.Engine.Validate},
		{"muxer", c.Muxer.Validate},
		{"feedback", c.Feedback.Validate},
		{"codec", c.Codec.Validate},
		{"storage", c.Storage.Validate},
		{"metrics", c.Metrics.Validate},
		{"log", c.Log.Validate},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}

// Clone 深拷贝配置（子配置均为值类型）
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

package multiplexing

import (
	"errors"
	"time"

	"github.com/centreon/go-broker/config"
)

// DefaultMuxerName 名称无效时使用的 Muxer 名称
const DefaultMuxerName = "default"

// Config 引擎配置
type Config struct {
	// DeliveryTimeout 单个 Muxer 每轮获取锁的最长等待
	DeliveryTimeout time.Duration

	// QueueWarnThreshold 入站队列告警阈值，0 禁用
	QueueWarnThreshold int

	// FanOutConcurrency 同时投递的 Muxer 数，0 表示不限
	FanOutConcurrency int

	// MaxQueueSize Muxer 内存队列上限，0 表示不限
	MaxQueueSize int

	// Feedback 回送路径
	Feedback FeedbackConfig
}

// FeedbackConfig 回送路径配置
type FeedbackConfig struct {
	Enabled bool
	Rate    float64
	Burst   int
	Echo    bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建引擎配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		DeliveryTimeout:    cfg.Engine.DeliveryTimeout.Duration(),
		QueueWarnThreshold: cfg.Engine.QueueWarnThreshold,
		FanOutConcurrency:  cfg.Engine.FanOutConcurrency,
		MaxQueueSize:       cfg.Muxer.MaxQueueSize,
		Feedback: FeedbackConfig{
			Enabled: cfg.Feedback.Enabled,
			Rate:    cfg.Feedback.Rate,
			Burst:   cfg.Feedback.Burst,
			Echo:    cfg.Feedback.Echo,
		},
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.DeliveryTimeout <= 0 {
		return errors.New("delivery timeout must be positive")
	}
	if c.QueueWarnThreshold < 0 || c.FanOutConcurrency < 0 || c.MaxQueueSize < 0 {
		return errors.New("limits cannot be negative")
	}
	if c.Feedback.Enabled && (c.Feedback.Rate <= 0 || c.Feedback.Burst < 1) {
		return errors.New("feedback rate and burst must be positive")
	}
	return nil
}

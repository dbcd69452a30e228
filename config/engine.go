package config

import (
	"errors"
	"time"
)

// EngineConfig 多路复用引擎配置
type EngineConfig struct {
	// AutoStart broker 启动时自动把引擎切换到 Running
	//
	// 关闭后引擎停留在 NotStarted，事件只入队，直到宿主调用 Resume。
	AutoStart bool `json:"auto_start" yaml:"auto_start" env:"AUTO_START"`

	// DeliveryTimeout 单个 Muxer 在一轮分发中获取锁的最长等待时间
	//
	// 超时的批次停放在该 Muxer 的积压列表，下一次操作时合并，不会丢失。
	DeliveryTimeout Duration `json:"delivery_timeout" yaml:"delivery_timeout" env:"DELIVERY_TIMEOUT"`

	// QueueWarnThreshold 入站队列超过该长度时告警，0 禁用
	QueueWarnThreshold int `json:"queue_warn_threshold" yaml:"queue_warn_threshold" env:"QUEUE_WARN_THRESHOLD"`

	// FanOutConcurrency 一轮分发中同时投递的 Muxer 数，0 表示不限
	FanOutConcurrency int `json:"fanout_concurrency" yaml:"fanout_concurrency" env:"FANOUT_CONCURRENCY"`
}

// DefaultEngineConfig 返回默认引擎配置
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AutoStart:          true,
		DeliveryTimeout:    Duration(5 * time.Second),
		QueueWarnThreshold: 100000,
	}
}

// Validate 验证引擎配置
func (c *EngineConfig) Validate() error {
	if c.DeliveryTimeout <= 0 {
		return errors.New("delivery_timeout must be positive")
	}
	if c.QueueWarnThreshold < 0 {
		return errors.New("queue_warn_threshold cannot be negative")
	}
	if c.FanOutConcurrency < 0 {
		return errors.New("fanout_concurrency cannot be negative")
	}
	return nil
}

// MuxerConfig Muxer 配置
type MuxerConfig struct {
	// MaxQueueSize 内存中保留的最大事件数，0 表示不限
	//
	// 超出部分写入溢出队列（启用存储时落盘），消费者 Ack 后回填。
	MaxQueueSize int `json:"max_queue_size" yaml:"max_queue_size" env:"MAX_QUEUE_SIZE"`

	// Persistent 启用存储时溢出队列是否落盘
	Persistent bool `json:"persistent" yaml:"persistent" env:"PERSISTENT"`
}

// DefaultMuxerConfig 返回默认 Muxer 配置
func DefaultMuxerConfig() MuxerConfig {
	return MuxerConfig{
		MaxQueueSize: 100000,
		Persistent:   true,
	}
}

// Validate 验证 Muxer 配置
func (c *MuxerConfig) Validate() error {
	if c.MaxQueueSize < 0 {
		return errors.New("max_queue_size cannot be negative")
	}
	return nil
}

// FeedbackConfig Muxer 回送路径配置
//
// 回送的事件进入引擎入站队列，分发时不会再投递给来源 Muxer。
type FeedbackConfig struct {
	// Enabled 是否允许回送
	Enabled bool `json:"enabled" yaml:"enabled" env:"ENABLED"`

	// Rate 每个 Muxer 每秒允许回送的事件数
	Rate float64 `json:"rate" yaml:"rate" env:"RATE"`

	// Burst 令牌桶容量
	Burst int `json:"burst" yaml:"burst" env:"BURST"`

	// Echo 是否把回送事件也投递给来源 Muxer
	Echo bool `json:"echo" yaml:"echo" env:"ECHO"`
}

// DefaultFeedbackConfig 返回默认回送配置
func DefaultFeedbackConfig() FeedbackConfig {
	return FeedbackConfig{
		Enabled: true,
		Rate:    1000,
		Burst:   100,
	}
}

// Validate 验证回送配置
func (c *FeedbackConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Rate <= 0 {
		return errors.New("rate must be positive")
	}
	if c.Burst < 1 {
		return errors.New("burst must be at least 1")
	}
	return nil
}

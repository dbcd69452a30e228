package config

import "errors"

// CodecConfig 帧解码配置
type CodecConfig struct {
	// MaxChain 单条记录最大帧数（含续帧标记）
	MaxChain int `json:"max_chain" yaml:"max_chain" env:"MAX_CHAIN"`

	// MaxRecordSize 单条记录负载上限（字节），0 不限，只有小于 64KiB 时生效
	MaxRecordSize int `json:"max_record_size" yaml:"max_record_size" env:"MAX_RECORD_SIZE"`

	// MaxResync 单次重同步最多跳过的字节数，0 不限
	MaxResync int `json:"max_resync" yaml:"max_resync" env:"MAX_RESYNC"`
}

// DefaultCodecConfig 返回默认解码配置
func DefaultCodecConfig() CodecConfig {
	return CodecConfig{
		MaxChain:      256,
		MaxRecordSize: 0,
		MaxResync:     1 << 20,
	}
}

// Validate 验证解码配置
func (c *CodecConfig) Validate() error {
	if c.MaxChain < 1 {
		return errors.New("max_chain must be at least 1")
	}
	if c.MaxRecordSize < 0 || c.MaxResync < 0 {
		return errors.New("limits cannot be negative")
	}
	return nil
}

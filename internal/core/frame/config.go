package frame

import "errors"

// Config 解码器配置
type Config struct {
	// MaxChain 单条记录允许的最大帧数（含续帧标记）
	MaxChain int

	// MaxRecordSize 单条记录负载上限（字节），0 表示不限
	//
	// 续帧标记不携带负载，记录负载就是最后一帧的负载，最大 0xFFFE 字节，
	// 因此只有小于 64KiB 的取值才会生效。
	MaxRecordSize int

	// MaxResync 单次重同步最多跳过的字节数，0 表示不限
	MaxResync int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxChain:      256,
		MaxRecordSize: 0,
		MaxResync:     1 << 20,  // 1MB
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.MaxChain < 1 {
		return errors.New("frame: max_chain must be at least 1")
	}
	if c.MaxRecordSize < 0 {
		return errors.New("frame: max_record_size cannot be negative")
	}
	if c.MaxResync < 0 {
		return errors.New("frame: max_resync cannot be negative")
	}
	return nil
}

package cache

import "errors"

var (
	// ErrCorrupted 队列游标或记录损坏
	ErrCorrupted = errors.New("cache: queue corrupted")
)

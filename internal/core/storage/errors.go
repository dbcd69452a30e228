package storage

import (
	"github.com/centreon/go-broker/internal/core/storage/engine"
)

// 重导出 engine 包的错误
var (
	ErrNotFound            = engine.ErrNotFound
	ErrEmptyKey            = engine.ErrEmptyKey
	ErrClosed              = engine.ErrClosed
	ErrReadOnly            = engine.ErrReadOnly
	ErrTransactionConflict = engine.ErrTransactionConflict
	ErrInvalidConfig       = engine.ErrInvalidConfig
	ErrCorrupted           = engine.ErrCorrupted
)

// 重导出错误检查函数
var (
	IsNotFound  = engine.IsNotFound
	IsClosed    = engine.IsClosed
	IsConflict  = engine.IsConflict
	IsCorrupted = engine.IsCorrupted
)

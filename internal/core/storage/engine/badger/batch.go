package badger

import (
	"github.com/centreon/go-broker/internal/core/storage/engine"
	"github.com/dgraph-io/badger/v4"
)

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// WriteBatch 批量写入实现
//
// 操作先缓存在内存，Write 时在单个读写事务中提交，保证原子性。
// 单批超过 badger 事务上限时返回 ErrTransactionTooLarge。
type WriteBatch struct {
	db  *Engine
	ops []batchOp
}

// Put 添加写入操作，空键被忽略
func (b *WriteBatch) Put(key, value []byte) {
	if len(key) == 0 {
		return
	}
	b.ops = append(b.ops, batchOp{key: key, value: value})
}

// Delete 添加删除操作，空键被忽略
func (b *WriteBatch) Delete(key []byte) {
	if len(key) == 0 {
		return
	}
	b.ops = append(b.ops, batchOp{key: key, delete: true})
}

// Write 原子写入全部操作
func (b *WriteBatch) Write() error {
	if b.db.closed.Load() {
		return engine.ErrClosed
	}
	if b.db.config.ReadOnly {
		return engine.ErrReadOnly
	}
	if len(b.ops) == 0 {
		return nil
	}

	var writes, deletes int64
	err := b.db.db.Update(func(txn *badger.Txn) error {
		for _, op := range b.ops {
			if op.delete {
				if err := txn.Delete(op.key); err != nil {
					return err
				}
				deletes++
				continue
			}
			if err := txn.Set(op.key, op.value); err != nil {
				return err
			}
			writes++
		}
		return nil
	})
	if err != nil {
		return convertError(err)
	}

	b.db.stats.numWrites.Add(writes)
	b.db.stats.numDeletes.Add(deletes)
	b.Reset()
	return nil
}

// Reset 丢弃未写入的操作
func (b *WriteBatch) Reset() {
	b.ops = b.ops[:0]
}

// Size 返回待写入的操作数量
func (b *WriteBatch) Size() int {
	return len(b.ops)
}

var _ engine.Batch = (*WriteBatch)(nil)

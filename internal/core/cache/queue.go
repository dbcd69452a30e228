package cache

import (
	"fmt"
	"sync"

	"github.com/centreon/go-broker/internal/core/storage/engine"
	"github.com/centreon/go-broker/internal/core/storage/kv"
	"github.com/centreon/go-broker/pkg/interfaces"
	"github.com/centreon/go-broker/pkg/lib/log"
)

var logger = log.Logger("core/cache")

var (
	entryPrefix = []byte("e/")
	headKey     = []byte("m/head")
	tailKey     = []byte("m/tail")
)

// Queue 持久化 FIFO 队列
type Queue struct {
	mu    sync.Mutex
	store *kv.Store
	codec interfaces.EventCodec

	// head 下一个出队序号，tail 下一个入队序号
	head uint64
	tail uint64
}

// NewQueue 打开队列，恢复上次的游标
func NewQueue(store *kv.Store, codec interfaces.EventCodec) (*Queue, error) {
	q := &Queue{store: store, codec: codec}

	var err error
	if q.head, err = loadCursor(store, headKey); err != nil {
		return nil, err
	}
	if q.tail, err = loadCursor(store, tailKey); err != nil {
		return nil, err
	}
	if q.tail < q.head {
		return nil, fmt.Errorf("%w: tail %d behind head %d", ErrCorrupted, q.tail, q.head)
	}

	if n := q.tail - q.head; n > 0 {
		logger.Info("恢复持久化队列", "prefix", string(store.Prefix()), "events", n)
	}
	return q, nil
}

func loadCursor(store *kv.Store, key []byte) (uint64, error) {
	v, err := store.GetUint64(key)
	if engine.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

func entryKey(seq uint64) []byte {
	return append(append([]byte(nil), entryPrefix...), kv.EncodeUint64(seq)...)
}

// Add 实现 interfaces.Cache
func (q *Queue) Add(ev interfaces.Event) error {
	return q.Push(ev)
}

// Push 实现 interfaces.Spool
func (q *Queue) Push(ev interfaces.Event) error {
	data, err := q.codec.Marshal(ev)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	b := q.store.NewBatch()
	b.Put(entryKey(q.tail), data)
	b.PutUint64(tailKey, q.tail+1)
	if err := b.Write(); err != nil {
		return err
	}
	q.tail++
	return nil
}

// Pop 实现 interfaces.Spool
//
// 记录缺失或无法解码时游标仍然前进，返回 ErrCorrupted，避免队列卡死。
func (q *Queue) Pop() (interfaces.Event, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == q.tail {
		return nil, false, nil
	}

	txn := q.store.NewTransaction(true)
	defer txn.Discard()

	key := entryKey(q.head)
	data, err := txn.Get(key)
	missing := engine.IsNotFound(err)
	if err != nil && !missing {
		return nil, false, err
	}
	if !missing {
		if err := txn.Delete(key); err != nil {
			return nil, false, err
		}
	}
	if err := txn.Set(headKey, kv.EncodeUint64(q.head+1)); err != nil {
		return nil, false, err
	}
	if err := txn.Commit(); err != nil {
		return nil, false, err
	}
	seq := q.head
	q.head++

	if missing {
		return nil, false, fmt.Errorf("%w: entry %d missing", ErrCorrupted, seq)
	}
	ev, err := q.codec.Unmarshal(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: entry %d: %v", ErrCorrupted, seq, err)
	}
	return ev, true, nil
}

// Drain 实现 interfaces.Cache
//
// 无法解码的记录被跳过并记录日志。
func (q *Queue) Drain() ([]interfaces.Event, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == q.tail {
		return nil, nil
	}

	events := make([]interfaces.Event, 0, q.tail-q.head)
	var keys [][]byte
	var skipped int
	err := q.store.PrefixScan(entryPrefix, func(key, value []byte) bool {
		keys = append(keys, key)
		ev, err := q.codec.Unmarshal(value)
		if err != nil {
			skipped++
			return true
		}
		events = append(events, ev)
		return true
	})
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		logger.Warn("跳过无法解码的缓存记录", "prefix", string(q.store.Prefix()), "skipped", skipped)
	}

	if err := q.reset(keys); err != nil {
		return nil, err
	}
	return events, nil
}

// Clear 实现 interfaces.Spool
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	keys, err := q.store.Keys(entryPrefix)
	if err != nil {
		return err
	}
	return q.reset(keys)
}

// reset 删除 keys 并把游标归零
func (q *Queue) reset(keys [][]byte) error {
	b := q.store.NewBatch()
	for _, key := range keys {
		b.Delete(key)
	}
	b.PutUint64(headKey, 0)
	b.PutUint64(tailKey, 0)
	if err := b.Write(); err != nil {
		return err
	}
	q.head, q.tail = 0, 0
	return nil
}

// Len 返回队列中的事件数
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.tail - q.head)
}

var (
	_ interfaces.Cache = (*Queue)(nil)
	_ interfaces.Spool = (*Queue)(nil)
)

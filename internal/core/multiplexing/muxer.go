package multiplexing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"weak"

	"golang.org/x/time/rate"

	"github.com/centreon/go-broker/internal/core/cache"
	"github.com/centreon/go-broker/internal/core/metrics"
	"github.com/centreon/go-broker/pkg/interfaces"
)

// ============================================================================
// Muxer
// ============================================================================

// Muxer 订阅者的私有事件队列
//
// 事件按投递顺序排列，Read 推进读游标，Ack 删除已读事件，
// Nack 把游标退回到第一个未确认的事件。
type Muxer struct {
	name   string
	engine weak.Pointer[Engine]

	metrics  *metrics.Metrics
	reporter metrics.Reporter
	feedback FeedbackConfig
	limiter  *rate.Limiter

	// sem 容量为 1 的信号量，以下字段只在持有时访问
	sem      chan struct{}
	poisoned error
	queue    []interfaces.Event
	cursor   int
	filter   Filter
	maxQueue int
	spool    interfaces.Spool

	reportedDelivered uint64
	reportedFiltered  uint64

	backlogMu sync.Mutex
	backlog   []interfaces.Event

	notifyMu sync.Mutex
	notify   chan struct{}

	memLen     atomic.Int64
	spoolLen   atomic.Int64
	backlogLen atomic.Int64
	delivered  atomic.Uint64
	filtered   atomic.Uint64
	consumed   atomic.Uint64
	timeouts   atomic.Uint64
	isPoisoned atomic.Bool
}

// MuxerStats Muxer 统计
type MuxerStats struct {
	Name      string
	Queued    int
	Spooled   int
	Backlog   int
	Delivered uint64
	Filtered  uint64
	Consumed  uint64
	Timeouts  uint64
	Poisoned  bool
}

func newMuxer(e *Engine, name string, spool interfaces.Spool, s muxerSettings) *Muxer {
	m := &Muxer{
		name:     name,
		engine:   e.self,
		metrics:  e.metrics,
		reporter: e.reporter,
		feedback: e.cfg.Feedback,
		sem:      make(chan struct{}, 1),
		maxQueue: e.cfg.MaxQueueSize,
		spool:    spool,
		notify:   make(chan struct{}),
	}
	if m.feedback.Enabled {
		m.limiter = rate.NewLimiter(rate.Limit(m.feedback.Rate), m.feedback.Burst)
	}
	m.applySettingsLocked(s)
	m.spoolLen.Store(int64(spool.Len()))
	return m
}

// Name 返回 Muxer 名称
func (m *Muxer) Name() string {
	return m.name
}

// ============================================================================
// 锁
// ============================================================================

func (m *Muxer) acquire(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	default:
	}
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Muxer) release() {
	<-m.sem
}

// withLock 在 Muxer 锁内执行 fn
//
// 进入时先合并积压批次；fn 内的 panic 使 Muxer 中毒。
func (m *Muxer) withLock(ctx context.Context, fn func() error) (err error) {
	if err := m.acquire(ctx); err != nil {
		return err
	}
	defer m.release()

	if m.poisoned != nil {
		return m.poisoned
	}
	defer func() {
		if r := recover(); r != nil {
			m.poisoned = fmt.Errorf("%w: muxer %q: %v", ErrLockPoisoned, m.name, r)
			m.isPoisoned.Store(true)
			logger.Error("Muxer 临界区 panic，已标记为中毒", "muxer", m.name, "panic", r)
			err = m.poisoned
		}
	}()

	m.mergeBacklogLocked()
	err = fn()
	m.reportLocked()
	return err
}

// ============================================================================
// 写入
// ============================================================================

// Push 把事件追加到私有队列
//
// 未通过写入过滤器的事件被丢弃并计数，返回 nil。
func (m *Muxer) Push(ev interfaces.Event) error {
	if ev == nil {
		return ErrNilEvent
	}
	var accepted bool
	err := m.withLock(context.Background(), func() error {
		accepted = m.pushLocked(ev)
		return nil
	})
	if accepted {
		m.signal()
	}
	return err
}

// deliver 投递一轮分发的批次
//
// 在 ctx 结束前拿不到锁时批次停放到积压列表，parked 为 true。
func (m *Muxer) deliver(ctx context.Context, evs []interfaces.Event) (parked bool, err error) {
	var accepted int
	err = m.withLock(ctx, func() error {
		for _, ev := range evs {
			if m.pushLocked(ev) {
				accepted++
			}
		}
		return nil
	})
	if err != nil && !IsPoisoned(err) {
		m.park(evs)
		return true, nil
	}
	if accepted > 0 {
		m.signal()
	}
	return false, err
}

// pushLocked 追加单个事件，调用方持有锁
func (m *Muxer) pushLocked(ev interfaces.Event) bool {
	if !m.filter.Allow(ev) {
		m.filtered.Add(1)
		return false
	}
	m.delivered.Add(1)

	if m.spool.Len() > 0 || (m.maxQueue > 0 && len(m.queue) >= m.maxQueue) {
		err := m.spool.Push(ev)
		if err == nil {
			m.spoolLen.Store(int64(m.spool.Len()))
			return true
		}
		logger.Warn("写入溢出队列失败，事件保留在内存", "muxer", m.name, "error", err)
	}

	m.queue = append(m.queue, ev)
	m.memLen.Store(int64(len(m.queue)))
	return true
}

// park 停放批次，等待下一次持锁操作合并
func (m *Muxer) park(evs []interfaces.Event) {
	m.backlogMu.Lock()
	m.backlog = append(m.backlog, evs...)
	m.backlogMu.Unlock()
	m.backlogLen.Add(int64(len(evs)))

	m.timeouts.Add(1)
	m.metrics.RecordDeliveryTimeout(m.name)
	logger.Debug("Muxer 忙，批次已停放", "muxer", m.name, "events", len(evs))
	m.signal()
}

func (m *Muxer) mergeBacklogLocked() {
	m.backlogMu.Lock()
	parked := m.backlog
	m.backlog = nil
	m.backlogMu.Unlock()
	if len(parked) == 0 {
		return
	}
	m.backlogLen.Add(-int64(len(parked)))

	for _, ev := range parked {
		m.pushLocked(ev)
	}
}

// refillLocked 从溢出队列回填内存队列
func (m *Muxer) refillLocked() {
	for m.spool.Len() > 0 && (m.maxQueue == 0 || len(m.queue) < m.maxQueue) {
		ev, ok, err := m.spool.Pop()
		if errors.Is(err, cache.ErrCorrupted) {
			logger.Warn("跳过损坏的溢出记录", "muxer", m.name, "error", err)
			continue
		}
		if err != nil {
			logger.Warn("读取溢出队列失败", "muxer", m.name, "error", err)
			break
		}
		if !ok {
			break
		}
		m.queue = append(m.queue, ev)
	}
	m.memLen.Store(int64(len(m.queue)))
	m.spoolLen.Store(int64(m.spool.Len()))
}

// reportLocked 上报自上次以来的投递计数
func (m *Muxer) reportLocked() {
	delivered, filtered := m.delivered.Load(), m.filtered.Load()
	dd, df := delivered-m.reportedDelivered, filtered-m.reportedFiltered
	m.reportedDelivered, m.reportedFiltered = delivered, filtered

	if dd > 0 {
		m.reporter.LogDelivered(m.name, int64(dd))
	}
	m.metrics.RecordDelivered(m.name, int(dd), int(df))
	m.metrics.RecordMuxerQueue(m.name, len(m.queue), m.spool.Len())
}

// ============================================================================
// 读取
// ============================================================================

func (m *Muxer) waitCh() <-chan struct{} {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	return m.notify
}

func (m *Muxer) signal() {
	m.notifyMu.Lock()
	close(m.notify)
	m.notify = make(chan struct{})
	m.notifyMu.Unlock()
}

// Read 阻塞读取下一个未读事件
func (m *Muxer) Read(ctx context.Context) (interfaces.Event, error) {
	for {
		// 先取等待通道再检查队列，避免丢失唤醒
		wait := m.waitCh()

		ev, ok, err := m.tryRead(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return ev, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// TryRead 非阻塞读取，没有未读事件时 ok 为 false
func (m *Muxer) TryRead() (ev interfaces.Event, ok bool, err error) {
	return m.tryRead(context.Background())
}

func (m *Muxer) tryRead(ctx context.Context) (ev interfaces.Event, ok bool, err error) {
	err = m.withLock(ctx, func() error {
		if m.cursor >= len(m.queue) {
			m.refillLocked()
		}
		if m.cursor < len(m.queue) {
			ev, ok = m.queue[m.cursor], true
			m.cursor++
		}
		return nil
	})
	return ev, ok, err
}

// Ack 确认最早的 n 个已读事件，返回确认数
func (m *Muxer) Ack(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrAckOverflow, n)
	}
	err := m.withLock(context.Background(), func() error {
		if n > m.cursor {
			return fmt.Errorf("%w: %d > %d", ErrAckOverflow, n, m.cursor)
		}
		clear(m.queue[:n])
		m.queue = m.queue[n:]
		if len(m.queue) == 0 {
			m.queue = nil
		}
		m.cursor -= n
		m.refillLocked()
		return nil
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.consumed.Add(uint64(n))
		m.reporter.LogConsumed(m.name, int64(n))
	}
	return n, nil
}

// Nack 把读游标退回到第一个未确认的事件
func (m *Muxer) Nack() error {
	rewound := false
	err := m.withLock(context.Background(), func() error {
		rewound = m.cursor > 0
		m.cursor = 0
		return nil
	})
	if rewound {
		m.signal()
	}
	return err
}

// ============================================================================
// 回送
// ============================================================================

// PublishBack 把事件送回引擎
//
// 分发时该事件不会投递给本 Muxer（除非配置了 Echo）。
func (m *Muxer) PublishBack(ev interfaces.Event) error {
	if !m.feedback.Enabled {
		return ErrFeedbackDisabled
	}
	if ev == nil {
		return ErrNilEvent
	}
	if !m.limiter.Allow() {
		m.metrics.RecordFeedback(m.name, "throttled")
		return ErrFeedbackThrottled
	}

	e := m.engine.Value()
	if e == nil {
		m.metrics.RecordFeedback(m.name, "rejected")
		return ErrEngineGone
	}
	if err := e.publish(entry{ev: ev, origin: m}); err != nil {
		m.metrics.RecordFeedback(m.name, "rejected")
		return err
	}
	m.metrics.RecordFeedback(m.name, "accepted")
	return nil
}

// ============================================================================
// 配置与查询
// ============================================================================

// SetWriteFilter 替换写入过滤器，只影响之后写入的事件
func (m *Muxer) SetWriteFilter(f Filter) error {
	return m.withLock(context.Background(), func() error {
		m.filter = f
		return nil
	})
}

func (m *Muxer) apply(s muxerSettings) error {
	return m.withLock(context.Background(), func() error {
		m.applySettingsLocked(s)
		m.refillLocked()
		return nil
	})
}

func (m *Muxer) applySettingsLocked(s muxerSettings) {
	if s.filter != nil {
		m.filter = *s.filter
	}
	if s.maxQueueSize != nil {
		m.maxQueue = *s.maxQueueSize
	}
}

// Events 返回内存队列中全部事件的副本（含已读未确认）
//
// 溢出队列中的事件不包含在内。
func (m *Muxer) Events() ([]interfaces.Event, error) {
	var out []interfaces.Event
	err := m.withLock(context.Background(), func() error {
		out = make([]interfaces.Event, len(m.queue))
		copy(out, m.queue)
		return nil
	})
	return out, err
}

// Len 返回尚未确认的事件数（内存、溢出队列和积压之和）
func (m *Muxer) Len() int {
	return int(m.memLen.Load() + m.spoolLen.Load() + m.backlogLen.Load())
}

// Stats 返回统计快照
func (m *Muxer) Stats() MuxerStats {
	return MuxerStats{
		Name:      m.name,
		Queued:    int(m.memLen.Load()),
		Spooled:   int(m.spoolLen.Load()),
		Backlog:   int(m.backlogLen.Load()),
		Delivered: m.delivered.Load(),
		Filtered:  m.filtered.Load(),
		Consumed:  m.consumed.Load(),
		Timeouts:  m.timeouts.Load(),
		Poisoned:  m.isPoisoned.Load(),
	}
}

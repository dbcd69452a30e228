package multiplexing

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"
	"weak"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/centreon/go-broker/internal/core/cache"
	"github.com/centreon/go-broker/internal/core/metrics"
	"github.com/centreon/go-broker/pkg/interfaces"
	"github.com/centreon/go-broker/pkg/lib/log"
)

var logger = log.Logger("core/multiplexing")

// entry 入站队列元素
//
// origin 非 nil 表示事件由该 Muxer 回送。
type entry struct {
	ev     interfaces.Event
	origin *Muxer
}

// Stats 引擎统计
type Stats struct {
	ID          string
	State       State
	QueueLen    int
	Unprocessed int
	Cached      int
	Muxers      int
	Published   int64
	Delivered   int64
}

// ============================================================================
// Engine
// ============================================================================

// Engine 多路复用引擎
type Engine struct {
	id       string
	cfg      Config
	clk      clock.Clock
	cache    interfaces.Cache
	spools   interfaces.SpoolFactory
	metrics  *metrics.Metrics
	reporter metrics.Reporter
	self     weak.Pointer[Engine]

	// roundMu 串行化分发轮次
	roundMu sync.Mutex

	mu          sync.Mutex
	poisoned    error
	closed      bool
	state       State
	queue       []entry
	warned      bool
	muxers      map[string]*Muxer
	order       []*Muxer
	unprocessed int
	runCtx      context.Context
	runCancel   context.CancelFunc
}

// New 创建引擎
//
// cache 为 nil 时使用内存缓存。引擎初始状态为 NotStarted。
func New(cfg Config, c interfaces.Cache, opts ...Option) *Engine {
	if err := cfg.Validate(); err != nil {
		logger.Warn("引擎配置无效，使用默认配置", "error", err)
		cfg = DefaultConfig()
	}
	if c == nil {
		c = cache.NewMemory()
	}

	e := &Engine{
		id:       uuid.NewString(),
		cfg:      cfg,
		clk:      clock.New(),
		cache:    c,
		spools:   cache.MemorySpoolFactory(),
		reporter: metrics.NewEventCounter(),
		muxers:   make(map[string]*Muxer),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.self = weak.Make(e)
	e.metrics.RecordState(int(NotStarted))

	logger.Debug("创建引擎", "id", log.TruncateID(e.id, 8))
	return e
}

// ID 返回引擎实例 ID
func (e *Engine) ID() string {
	return e.id
}

// withLock 在引擎锁内执行 fn，fn 内的 panic 使引擎中毒
func (e *Engine) withLock(fn func() error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.poisoned != nil {
		return e.poisoned
	}
	defer func() {
		if r := recover(); r != nil {
			e.poisoned = fmt.Errorf("%w: engine: %v", ErrLockPoisoned, r)
			logger.Error("引擎临界区 panic，已标记为中毒", "panic", r)
			err = e.poisoned
		}
	}()
	return fn()
}

// enqueueLocked 追加到入站队列，调用方持有引擎锁
func (e *Engine) enqueueLocked(ents ...entry) {
	e.queue = append(e.queue, ents...)
	if t := e.cfg.QueueWarnThreshold; t > 0 {
		if len(e.queue) >= t && !e.warned {
			e.warned = true
			logger.Warn("入站队列积压", "len", len(e.queue), "threshold", t)
		} else if len(e.queue) < t {
			e.warned = false
		}
	}
	e.metrics.RecordQueue(len(e.queue), e.unprocessed)
}

func (e *Engine) setStateLocked(s State) {
	e.state = s
	e.metrics.RecordState(int(s))
}

// ============================================================================
// 发布
// ============================================================================

// Publish 发布单个事件
//
//   - NotStarted: 入队
//   - Running: 入队并执行一轮分发
//   - Stopped: 写入缓存，成功后未处理计数加一；写入失败时事件留在入站队列
func (e *Engine) Publish(ev interfaces.Event) error {
	if ev == nil {
		return ErrNilEvent
	}
	return e.publish(entry{ev: ev})
}

func (e *Engine) publish(ent entry) error {
	var (
		fanout bool
		run    context.Context
	)
	err := e.withLock(func() error {
		if e.closed {
			return ErrClosed
		}
		switch e.state {
		case NotStarted:
			e.enqueueLocked(ent)
		case Running:
			e.enqueueLocked(ent)
			fanout, run = true, e.runCtx
		case Stopped:
			e.cacheLocked(ent)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.reporter.LogPublished(1)
	e.metrics.RecordPublished(1)

	if !fanout {
		return nil
	}
	ctx, cancel := bindRun(context.Background(), run)
	defer cancel()
	_, engErr, _ := e.fanOut(ctx)
	return engErr
}

// cacheLocked 把事件写入缓存，调用方持有引擎锁
func (e *Engine) cacheLocked(ent entry) {
	err := e.cache.Add(ent.ev)
	e.metrics.RecordCached(err)
	if err != nil {
		logger.Warn("写入缓存失败，事件保留在入站队列", "error", err)
		e.enqueueLocked(ent)
		return
	}
	e.unprocessed++
	e.metrics.RecordQueue(len(e.queue), e.unprocessed)
}

// PublishBatch 按序追加到入站队列，不触发分发
func (e *Engine) PublishBatch(evs []interfaces.Event) error {
	ents := make([]entry, 0, len(evs))
	for _, ev := range evs {
		if ev == nil {
			return ErrNilEvent
		}
		ents = append(ents, entry{ev: ev})
	}

	err := e.withLock(func() error {
		if e.closed {
			return ErrClosed
		}
		e.enqueueLocked(ents...)
		return nil
	})
	if err != nil {
		return err
	}
	e.reporter.LogPublished(int64(len(ents)))
	e.metrics.RecordPublished(len(ents))
	return nil
}

// ============================================================================
// 生命周期
// ============================================================================

// Start 切换到 Running
//
// 先取出缓存中的全部事件放到入站队列最前面，重置未处理计数，
// 然后执行一轮分发。已在 Running 时直接返回。
func (e *Engine) Start(ctx context.Context) error {
	var (
		started bool
		run     context.Context
	)
	err := e.withLock(func() error {
		if e.closed {
			return ErrClosed
		}
		if e.state == Running {
			return nil
		}

		cached, err := e.cache.Drain()
		if err != nil {
			e.metrics.RecordCacheError()
			return fmt.Errorf("drain cache: %w", err)
		}
		replay := make([]entry, 0, len(cached)+len(e.queue))
		for _, ev := range cached {
			replay = append(replay, entry{ev: ev})
		}
		e.queue = append(replay, e.queue...)
		e.unprocessed = 0
		e.metrics.RecordQueue(len(e.queue), 0)

		e.runCtx, e.runCancel = context.WithCancel(context.Background())
		run = e.runCtx
		from := e.state
		e.setStateLocked(Running)
		started = true

		logger.Info("引擎已启动", "from", from, "replayed", len(cached), "queued", len(e.queue))
		return nil
	})
	if err != nil || !started {
		return err
	}

	ctx, cancel := bindRun(ctx, run)
	defer cancel()
	_, engErr, _ := e.fanOut(ctx)
	return engErr
}

// Stop 切换到 Stopped
//
// 取消进行中的分发轮次（未投递的批次进入各 Muxer 积压列表），
// 把入站队列剩余事件投递给 Muxer；没有 Muxer 时写入缓存。
// 之后的 Publish 写入缓存。
func (e *Engine) Stop(ctx context.Context) error {
	var stopped bool
	err := e.withLock(func() error {
		if e.closed {
			return ErrClosed
		}
		if e.state == Stopped {
			return nil
		}
		if e.runCancel != nil {
			e.runCancel()
			e.runCtx, e.runCancel = nil, nil
		}
		e.setStateLocked(Stopped)
		stopped = true

		if len(e.muxers) == 0 {
			e.spillLocked()
		}
		return nil
	})
	if err != nil || !stopped {
		return err
	}

	n, engErr, muxErr := e.fanOut(ctx)
	if muxErr != nil {
		logger.Warn("停止时部分 Muxer 投递失败", "error", muxErr)
	}
	logger.InfoContext(ctx, "引擎已停止", "flushed", n, "unprocessed", e.UnprocessedEvents())
	return engErr
}

// spillLocked 把入站队列全部写入缓存，返回写入失败（仍留在队列中）的事件数
func (e *Engine) spillLocked() int {
	if len(e.queue) == 0 {
		return 0
	}
	pending := e.queue
	e.queue = nil
	for _, ent := range pending {
		e.cacheLocked(ent)
	}
	return len(e.queue)
}

// Shutdown 停止引擎并标记关闭，之后的调用返回 ErrClosed
//
// 已处于 Stopped 时入站队列可能仍有事件（PublishBatch 或缓存写入失败），
// 关闭前统一写入缓存。仍无法写入的事件随引擎一起丢弃，返回 ErrEventsLost。
func (e *Engine) Shutdown(ctx context.Context) error {
	if err := e.Stop(ctx); err != nil {
		return err
	}
	return e.withLock(func() error {
		lost := e.spillLocked()
		e.closed = true
		logger.Info("引擎已关闭", "id", log.TruncateID(e.id, 8), "unprocessed", e.unprocessed, "lost", lost)
		if lost > 0 {
			return fmt.Errorf("%w: %d events", ErrEventsLost, lost)
		}
		return nil
	})
}

// bindRun 派生一个在 run 被取消时同时取消的上下文，run 可以为 nil
func bindRun(ctx, run context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	if run == nil {
		return ctx, cancel
	}
	stop := context.AfterFunc(run, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// runContext 返回当前运行上下文，未运行时为 nil
func (e *Engine) runContext() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runCtx
}

// ============================================================================
// Muxer 注册
// ============================================================================

// RegisterMuxer 注册 Muxer
//
// 名称为空或不是合法 UTF-8 时使用 DefaultMuxerName 完成注册，
// 同时返回 ErrMuxerNameInvalid。同名 Muxer 已存在时返回它并重新应用选项。
// 新 Muxer 在引擎锁外构造完成后才加入注册表，分发轮次不会看到半成品。
func (e *Engine) RegisterMuxer(name string, opts ...MuxerOption) (*Muxer, error) {
	var nameErr error
	if name == "" || !utf8.ValidString(name) {
		nameErr = fmt.Errorf("%w: %q", ErrMuxerNameInvalid, name)
		logger.Warn("Muxer 名称无效，使用默认名称", "name", name, "default", DefaultMuxerName)
		name = DefaultMuxerName
	}

	var s muxerSettings
	for _, opt := range opts {
		opt(&s)
	}

	existing, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, multierr.Combine(nameErr, existing.apply(s))
	}

	spool, err := e.spools(name)
	if err != nil {
		return nil, fmt.Errorf("open spool %q: %w", name, err)
	}
	m := newMuxer(e, name, spool, s)

	err = e.withLock(func() error {
		if e.closed {
			return ErrClosed
		}
		if cur := e.muxers[name]; cur != nil {
			existing = cur
			return nil
		}
		e.muxers[name] = m
		e.order = append(e.order, m)
		e.metrics.RecordMuxers(len(e.order))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, multierr.Combine(nameErr, existing.apply(s))
	}

	logger.Info("注册 Muxer", "muxer", name, "spooled", spool.Len())
	return m, nameErr
}

func (e *Engine) lookup(name string) (*Muxer, error) {
	var m *Muxer
	err := e.withLock(func() error {
		if e.closed {
			return ErrClosed
		}
		m = e.muxers[name]
		return nil
	})
	return m, err
}

// Muxer 按名称查找 Muxer
func (e *Engine) Muxer(name string) (*Muxer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.muxers[name]
	return m, ok
}

// Muxers 按注册顺序返回全部 Muxer 名称
func (e *Engine) Muxers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, len(e.order))
	for i, m := range e.order {
		names[i] = m.name
	}
	return names
}

// ============================================================================
// 查询
// ============================================================================

// State 返回当前状态
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// UnprocessedEvents 返回自停止以来写入缓存的事件数
func (e *Engine) UnprocessedEvents() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unprocessed
}

// QueueLen 返回入站队列长度
func (e *Engine) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Queue 返回入站队列的副本
func (e *Engine) Queue() []interfaces.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]interfaces.Event, len(e.queue))
	for i, ent := range e.queue {
		out[i] = ent.ev
	}
	return out
}

// Clear 丢弃入站队列
func (e *Engine) Clear() error {
	return e.withLock(func() error {
		if e.closed {
			return ErrClosed
		}
		if n := len(e.queue); n > 0 {
			logger.Info("清空入站队列", "dropped", n)
		}
		e.queue = nil
		e.warned = false
		e.metrics.RecordQueue(0, e.unprocessed)
		return nil
	})
}

// Err 返回引擎中毒错误，正常时为 nil
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.poisoned
}

// Stats 返回统计快照
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	s := Stats{
		ID:          e.id,
		State:       e.state,
		QueueLen:    len(e.queue),
		Unprocessed: e.unprocessed,
		Muxers:      len(e.order),
	}
	e.mu.Unlock()

	s.Cached = e.cache.Len()
	totals := e.reporter.Totals()
	s.Published = totals.TotalIn
	s.Delivered = totals.TotalOut
	return s
}

// Gauges 实现 metrics.GaugeSource
func (e *Engine) Gauges() metrics.EngineGauges {
	s := e.Stats()
	return metrics.EngineGauges{
		State:       s.State.String(),
		QueueLen:    s.QueueLen,
		Unprocessed: s.Unprocessed,
		Muxers:      s.Muxers,
		Cached:      s.Cached,
	}
}

// Reporter 返回吞吐计数器
func (e *Engine) Reporter() metrics.Reporter {
	return e.reporter
}

var _ metrics.GaugeSource = (*Engine)(nil)

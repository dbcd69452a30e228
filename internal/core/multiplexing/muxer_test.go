package multiplexing

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centreon/go-broker/pkg/interfaces"
	"github.com/centreon/go-broker/pkg/types"
)

// ============================================================================
// 读取与确认
// ============================================================================

func TestMuxer_ReadAckNack(t *testing.T) {
	e := newTestEngine(t, nil)
	m := register(t, e, "m")

	a, b, c := testEvent(1), testEvent(2), testEvent(3)
	for _, ev := range []interfaces.Event{a, b, c} {
		require.NoError(t, m.Push(ev))
	}

	ev, ok, err := m.TryRead()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, a, ev)
	ev, _, _ = m.TryRead()
	assert.Same(t, b, ev)

	// 未确认的事件重新读取
	require.NoError(t, m.Nack())
	ev, _, _ = m.TryRead()
	assert.Same(t, a, ev)

	_, err = m.Ack(2)
	assert.ErrorIs(t, err, ErrAckOverflow)
	_, err = m.Ack(-1)
	assert.ErrorIs(t, err, ErrAckOverflow)

	n, err := m.Ack(1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []interfaces.Event{b, c}, events(t, m))

	ev, _, _ = m.TryRead()
	assert.Same(t, b, ev)
	ev, _, _ = m.TryRead()
	assert.Same(t, c, ev)
	_, ok, err = m.TryRead()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.Ack(2)
	require.NoError(t, err)
	assert.Zero(t, m.Len())
	assert.Equal(t, uint64(3), m.Stats().Consumed)
}

func TestMuxer_ReadBlocks(t *testing.T) {
	e := newTestEngine(t, nil)
	m := register(t, e, "m")

	got := make(chan interfaces.Event, 1)
	go func() {
		ev, err := m.Read(context.Background())
		if err == nil {
			got <- ev
		}
	}()

	a := testEvent(1)
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, m.Push(a))

	select {
	case ev := <-got:
		assert.Same(t, a, ev)
	case <-time.After(time.Second):
		t.Fatal("Read 未被唤醒")
	}
}

func TestMuxer_ReadContextCancel(t *testing.T) {
	e := newTestEngine(t, nil)
	m := register(t, e, "m")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Read(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMuxer_ReadWakesOnFanOut(t *testing.T) {
	e := newTestEngine(t, nil)
	m := register(t, e, "m")
	require.NoError(t, e.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := m.Read(ctx)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, e.Publish(testEvent(1)))
	require.NoError(t, <-done)
}

// ============================================================================
// 溢出队列
// ============================================================================

func TestMuxer_SpoolPreservesOrder(t *testing.T) {
	e := newTestEngine(t, nil)
	m := register(t, e, "m", WithMaxQueueSize(2))

	var pushed []interfaces.Event
	for i := uint16(1); i <= 5; i++ {
		ev := testEvent(i)
		pushed = append(pushed, ev)
		require.NoError(t, m.Push(ev))
	}

	s := m.Stats()
	assert.Equal(t, 2, s.Queued)
	assert.Equal(t, 3, s.Spooled)
	assert.Equal(t, 5, m.Len())

	var got []interfaces.Event
	for {
		ev, ok, err := m.TryRead()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, ev)
		_, err = m.Ack(1)
		require.NoError(t, err)
	}
	assert.Equal(t, pushed, got)
	assert.Zero(t, m.Len())
}

func TestMuxer_SpoolKeepsFIFOAfterAck(t *testing.T) {
	e := newTestEngine(t, nil)
	m := register(t, e, "m", WithMaxQueueSize(1))

	a, b, c := testEvent(1), testEvent(2), testEvent(3)
	require.NoError(t, m.Push(a))
	require.NoError(t, m.Push(b))

	ev, _, _ := m.TryRead()
	assert.Same(t, a, ev)
	_, err := m.Ack(1)
	require.NoError(t, err)

	// b 已回填到内存，c 不能插队
	require.NoError(t, m.Push(c))
	ev, _, _ = m.TryRead()
	assert.Same(t, b, ev)
	_, _ = m.Ack(1)
	ev, _, _ = m.TryRead()
	assert.Same(t, c, ev)
}

type failingSpool struct{}

func (failingSpool) Push(interfaces.Event) error          { return errors.New("disk full") }
func (failingSpool) Pop() (interfaces.Event, bool, error) { return nil, false, nil }
func (failingSpool) Len() int                             { return 0 }
func (failingSpool) Clear() error                         { return nil }

func TestMuxer_SpoolFailureKeepsEventInMemory(t *testing.T) {
	e := newTestEngine(t, nil, WithSpoolFactory(func(string) (interfaces.Spool, error) {
		return failingSpool{}, nil
	}))
	m := register(t, e, "m", WithMaxQueueSize(1))

	require.NoError(t, m.Push(testEvent(1)))
	require.NoError(t, m.Push(testEvent(2)))
	assert.Len(t, events(t, m), 2)
}

func TestMuxer_SpoolFactoryError(t *testing.T) {
	e := newTestEngine(t, nil, WithSpoolFactory(func(string) (interfaces.Spool, error) {
		return nil, errors.New("open failed")
	}))
	_, err := e.RegisterMuxer("m")
	assert.Error(t, err)
	assert.Empty(t, e.Muxers())
}

// ============================================================================
// 过滤器
// ============================================================================

func TestMuxer_WriteFilter(t *testing.T) {
	e := newTestEngine(t, nil)
	m := register(t, e, "m", WithFilter(AllowCategories(types.CategoryNeb)))

	neb := testEvent(1)
	bbdo := types.NewEvent(types.MakeType(types.CategoryBBDO, 1), nil)
	require.NoError(t, m.Push(neb))
	require.NoError(t, m.Push(bbdo))

	assert.Equal(t, []interfaces.Event{neb}, events(t, m))
	assert.Equal(t, uint64(1), m.Stats().Filtered)

	require.NoError(t, m.SetWriteFilter(AllowAll()))
	require.NoError(t, m.Push(bbdo))
	assert.Len(t, events(t, m), 2)
}

func TestFilter_Allow(t *testing.T) {
	neb := testEvent(7)
	bam := types.NewEvent(types.MakeType(types.CategoryBAM, 1), nil)

	tests := []struct {
		name   string
		filter Filter
		ev     interfaces.Event
		want   bool
	}{
		{"all", AllowAll(), neb, true},
		{"type hit", AllowTypes(neb.Type()), neb, true},
		{"type miss", AllowTypes(neb.Type()), bam, false},
		{"category hit", AllowCategories(types.CategoryBAM), bam, true},
		{"type or category", Filter{Types: []uint32{neb.Type()}, Categories: []uint16{types.CategoryBAM}}, bam, true},
		{"match", Filter{Match: func(ev interfaces.Event) bool { return ev == neb }}, bam, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Allow(tt.ev))
		})
	}
}

// ============================================================================
// 锁中毒
// ============================================================================

func TestMuxer_LockPoisoned(t *testing.T) {
	e := newTestEngine(t, nil)
	bad := register(t, e, "bad", WithFilter(Filter{Match: func(interfaces.Event) bool {
		panic("filter bug")
	}}))
	good := register(t, e, "good")
	require.NoError(t, e.Start(context.Background()))

	// 其它 Muxer 不受影响
	ev := testEvent(1)
	require.NoError(t, e.Publish(ev))
	assert.Equal(t, []interfaces.Event{ev}, events(t, good))

	assert.True(t, bad.Stats().Poisoned)
	_, err := bad.Events()
	assert.ErrorIs(t, err, ErrLockPoisoned)
	assert.ErrorIs(t, bad.Push(testEvent(2)), ErrLockPoisoned)
	_, _, err = bad.TryRead()
	assert.ErrorIs(t, err, ErrLockPoisoned)

	require.NoError(t, e.PublishBatch([]interfaces.Event{testEvent(3)}))
	_, err = e.FanOut(context.Background())
	assert.ErrorIs(t, err, ErrLockPoisoned)
	assert.NoError(t, e.Err())
}

// ============================================================================
// 回送
// ============================================================================

func TestMuxer_PublishBackSkipsOrigin(t *testing.T) {
	e := newTestEngine(t, nil)
	m1 := register(t, e, "m1")
	m2 := register(t, e, "m2")
	require.NoError(t, e.Start(context.Background()))

	ev := testEvent(1)
	require.NoError(t, m1.PublishBack(ev))

	assert.Empty(t, events(t, m1))
	assert.Equal(t, []interfaces.Event{ev}, events(t, m2))
}

func TestMuxer_PublishBackEcho(t *testing.T) {
	cfg := testConfig()
	cfg.Feedback.Echo = true
	e := New(cfg, nil)
	defer e.Shutdown(context.Background())

	m1 := register(t, e, "m1")
	require.NoError(t, e.Start(context.Background()))

	ev := testEvent(1)
	require.NoError(t, m1.PublishBack(ev))
	assert.Equal(t, []interfaces.Event{ev}, events(t, m1))
}

func TestMuxer_PublishBackThrottled(t *testing.T) {
	cfg := testConfig()
	cfg.Feedback.Rate = 0.001
	cfg.Feedback.Burst = 1
	e := New(cfg, nil)
	defer e.Shutdown(context.Background())

	m := register(t, e, "m")
	require.NoError(t, m.PublishBack(testEvent(1)))
	assert.ErrorIs(t, m.PublishBack(testEvent(2)), ErrFeedbackThrottled)
	assert.Equal(t, 1, e.QueueLen())
}

func TestMuxer_PublishBackDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Feedback.Enabled = false
	e := New(cfg, nil)
	defer e.Shutdown(context.Background())

	m := register(t, e, "m")
	assert.ErrorIs(t, m.PublishBack(testEvent(1)), ErrFeedbackDisabled)
}

func TestMuxer_PublishBackEngineGone(t *testing.T) {
	m := func() *Muxer {
		e := New(testConfig(), nil)
		m, err := e.RegisterMuxer("orphan")
		require.NoError(t, err)
		return m
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return errors.Is(m.PublishBack(testEvent(1)), ErrEngineGone)
	}, 5*time.Second, 10*time.Millisecond)
}

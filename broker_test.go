package broker

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/centreon/go-broker/config"
	"github.com/centreon/go-broker/internal/core/frame"
	"github.com/centreon/go-broker/internal/core/multiplexing"
	"github.com/centreon/go-broker/pkg/types"
)

// ============================================================================
// 辅助函数
// ============================================================================

func appendEvent(t *testing.T, buf []byte, element uint16, payload string) []byte {
	t.Helper()
	out, err := frame.AppendFrame(buf, frame.Header{
		EventType: types.MakeType(types.CategoryNeb, element),
		SourceID:  1,
	}, []byte(payload))
	require.NoError(t, err)
	return out
}

func startBroker(t *testing.T, opts ...Option) *Broker {
	t.Helper()
	b, err := Start(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func readPayload(t *testing.T, m *Muxer) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := m.Read(ctx)
	require.NoError(t, err)
	fe, ok := ev.(*types.Event)
	require.True(t, ok)
	return string(fe.Payload)
}

// ============================================================================
// 构造与生命周期
// ============================================================================

func TestNew_Defaults(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.Engine())
	assert.Equal(t, NotStarted, b.Engine().State())
	assert.Empty(t, b.MetricsAddr())
	assert.NotNil(t, b.Registry())
	assert.True(t, b.Config().Engine.AutoStart)
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil config", WithConfig(nil)},
		{"zero delivery timeout", WithDeliveryTimeout(0)},
		{"negative concurrency", WithFanOutConcurrency(-1)},
		{"unknown log level", WithLogLevel("loud")},
		{"empty log file", WithLogFile("")},
		{"nil cache", WithCache(nil)},
		{"nil spool factory", WithSpoolFactory(nil)},
		{"zero start timeout", WithStartTimeout(0)},
		{"missing config file", WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Engine.DeliveryTimeout = 0

	_, err := New(WithConfig(cfg))
	assert.Error(t, err)
}

func TestWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  auto_start: false\n  fanout_concurrency: 2\n"), 0600))

	b, err := New(WithConfigFile(path))
	require.NoError(t, err)
	defer b.Close()

	cfg := b.Config()
	assert.False(t, cfg.Engine.AutoStart)
	assert.Equal(t, 2, cfg.Engine.FanOutConcurrency)
}

func TestBroker_StartTwice(t *testing.T) {
	b := startBroker(t)
	assert.Equal(t, Running, b.Engine().State())
	assert.ErrorIs(t, b.Start(context.Background()), ErrAlreadyStarted)
}

func TestBroker_Close(t *testing.T) {
	b, err := Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Start(context.Background()), ErrBrokerClosed)
	assert.ErrorIs(t, b.Publish(types.NewEvent(1, nil)), ErrBrokerClosed)
	_, err = b.PublishFrames(nil)
	assert.ErrorIs(t, err, ErrBrokerClosed)
	_, err = b.RegisterMuxer("m")
	assert.ErrorIs(t, err, ErrBrokerClosed)
	assert.ErrorIs(t, b.Resume(context.Background()), ErrBrokerClosed)
}

func TestBroker_CloseWithoutStart(t *testing.T) {
	b, err := New(WithDataDir(t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Engine().Publish(types.NewEvent(1, nil)), multiplexing.ErrClosed)
}

func TestBroker_StopResume(t *testing.T) {
	b := startBroker(t)
	m, err := b.RegisterMuxer("m")
	require.NoError(t, err)

	require.NoError(t, b.Stop(context.Background()))
	assert.Equal(t, Stopped, b.Engine().State())

	require.NoError(t, b.Publish(types.NewEvent(1, []byte("cached"))))
	assert.Equal(t, 1, b.Engine().UnprocessedEvents())
	assert.Equal(t, 0, m.Len())

	require.NoError(t, b.Resume(context.Background()))
	assert.Equal(t, Running, b.Engine().State())
	assert.Equal(t, 0, b.Engine().UnprocessedEvents())
	assert.Equal(t, "cached", readPayload(t, m))
}

func TestBroker_WithCache(t *testing.T) {
	fc := multiplexing.NewFakeCache()
	b := startBroker(t, WithCache(fc))

	require.NoError(t, b.Stop(context.Background()))
	ev := types.NewEvent(1, nil)
	require.NoError(t, b.Publish(ev))

	assert.Equal(t, 1, fc.Adds())
	assert.Equal(t, []Event{ev}, fc.Events())
}

func TestBroker_PersistentCache(t *testing.T) {
	dir := t.TempDir()

	b, err := Start(context.Background(), WithDataDir(dir))
	require.NoError(t, err)
	require.NoError(t, b.Stop(context.Background()))
	require.NoError(t, b.Publish(types.NewEvent(types.MakeType(types.CategoryNeb, 1), []byte("a"))))
	require.NoError(t, b.Publish(types.NewEvent(types.MakeType(types.CategoryNeb, 2), []byte("b"))))
	require.NoError(t, b.Close())

	b2 := startBroker(t, WithDataDir(dir), WithAutoStart(false))
	m, err := b2.RegisterMuxer("m")
	require.NoError(t, err)
	require.NoError(t, b2.Resume(context.Background()))

	assert.Equal(t, "a", readPayload(t, m))
	assert.Equal(t, "b", readPayload(t, m))
}

func TestBroker_WithFxOptions(t *testing.T) {
	var got *multiplexing.Engine
	b := startBroker(t, WithFxOptions(fx.Invoke(func(e *multiplexing.Engine) {
		got = e
	})))
	assert.Same(t, b.Engine(), got)
}

func TestBroker_WithLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.log")

	b, err := New(WithLogFile(path), WithLogLevel("debug"))
	require.NoError(t, err)
	require.NoError(t, b.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "日志文件初始化成功")
}

// ============================================================================
// 发布
// ============================================================================

func TestBroker_PublishFrames(t *testing.T) {
	b := startBroker(t)
	m1, err := b.RegisterMuxer("m1")
	require.NoError(t, err)
	m2, err := b.RegisterMuxer("m2")
	require.NoError(t, err)

	buf := []byte{0xde, 0xad}
	buf = appendEvent(t, buf, 14, "host")
	buf = appendEvent(t, buf, 24, "service")

	n, err := b.PublishFrames(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, m := range []*Muxer{m1, m2} {
		assert.Equal(t, "host", readPayload(t, m))
		assert.Equal(t, "service", readPayload(t, m))
	}
	assert.Equal(t, int64(2), b.Stats().Published)
}

func TestBroker_PublishFrames_DecodeError(t *testing.T) {
	b := startBroker(t)
	m, err := b.RegisterMuxer("m")
	require.NoError(t, err)

	buf := appendEvent(t, nil, 1, "ok")
	tail := appendEvent(t, nil, 2, "cut")
	buf = append(buf, tail[:len(tail)-1]...)

	n, err := b.PublishFrames(buf)
	assert.ErrorIs(t, err, ErrFrameTruncated)
	assert.Equal(t, 1, n)
	assert.Equal(t, "ok", readPayload(t, m))

	require.NotNil(t, b.metrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(b.metrics.FramesDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.metrics.DecodeErrors.WithLabelValues("truncated")))
}

func TestBroker_PublishFrames_NotStarted(t *testing.T) {
	b, err := New(WithAutoStart(false))
	require.NoError(t, err)
	defer b.Close()

	n, err := b.PublishFrames(appendEvent(t, nil, 1, "queued"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, b.Engine().QueueLen())
}

func TestBroker_PublishFrames_StoppedSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	b, err := Start(context.Background(), WithDataDir(dir))
	require.NoError(t, err)
	require.NoError(t, b.Stop(context.Background()))

	buf := appendEvent(t, nil, 1, "first")
	buf = appendEvent(t, buf, 2, "second")
	n, err := b.PublishFrames(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, b.Engine().UnprocessedEvents())
	assert.Zero(t, b.Engine().QueueLen())
	require.NoError(t, b.Close())

	b2 := startBroker(t, WithDataDir(dir), WithAutoStart(false))
	m, err := b2.RegisterMuxer("m")
	require.NoError(t, err)
	require.NoError(t, b2.Resume(context.Background()))

	assert.Equal(t, "first", readPayload(t, m))
	assert.Equal(t, "second", readPayload(t, m))
}

func TestBroker_PublishBatch_StoppedCaches(t *testing.T) {
	fc := multiplexing.NewFakeCache()
	b := startBroker(t, WithCache(fc))
	require.NoError(t, b.Stop(context.Background()))

	a, c := types.NewEvent(1, nil), types.NewEvent(2, nil)
	require.NoError(t, b.PublishBatch([]Event{a, c}))
	assert.Equal(t, []Event{a, c}, fc.Events())
	assert.Equal(t, 2, b.Engine().UnprocessedEvents())

	// nil 事件在发布前整批拒绝
	assert.ErrorIs(t, b.PublishBatch([]Event{a, nil}), ErrNilEvent)
	assert.Equal(t, 2, fc.Adds())
}

func TestBroker_CloseSpillsStoppedQueue(t *testing.T) {
	dir := t.TempDir()

	b, err := Start(context.Background(), WithDataDir(dir))
	require.NoError(t, err)
	require.NoError(t, b.Stop(context.Background()))

	// 直接经引擎追加的事件停留在入站队列，关闭时写入缓存
	require.NoError(t, b.Engine().PublishBatch([]Event{
		types.NewEvent(types.MakeType(types.CategoryNeb, 1), []byte("queued")),
	}))
	require.Equal(t, 1, b.Engine().QueueLen())
	require.NoError(t, b.Close())

	b2 := startBroker(t, WithDataDir(dir), WithAutoStart(false))
	m, err := b2.RegisterMuxer("m")
	require.NoError(t, err)
	require.NoError(t, b2.Resume(context.Background()))
	assert.Equal(t, "queued", readPayload(t, m))
}

func TestBroker_PublishStream(t *testing.T) {
	b := startBroker(t)
	m, err := b.RegisterMuxer("m")
	require.NoError(t, err)

	const total = streamBatchSize + 44
	var buf []byte
	for i := 0; i < total; i++ {
		buf = appendEvent(t, buf, 1, "x")
	}

	n, err := b.PublishStream(context.Background(), bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, total, n)
	assert.Equal(t, total, m.Len())
}

func TestBroker_PublishStream_Truncated(t *testing.T) {
	b := startBroker(t)
	m, err := b.RegisterMuxer("m")
	require.NoError(t, err)

	buf := appendEvent(t, nil, 1, "first")
	buf = append(buf, appendEvent(t, nil, 1, "second")[:10]...)

	n, err := b.PublishStream(context.Background(), bytes.NewReader(buf))
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "first", readPayload(t, m))
}

func TestBroker_PublishBatch(t *testing.T) {
	b := startBroker(t)
	m, err := b.RegisterMuxer("m", WithFilter(Filter{Types: []uint32{2}}))
	require.NoError(t, err)

	require.NoError(t, b.PublishBatch([]Event{
		types.NewEvent(1, []byte("dropped")),
		types.NewEvent(2, []byte("kept")),
	}))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "kept", readPayload(t, m))

	assert.ErrorIs(t, b.PublishBatch([]Event{nil}), ErrNilEvent)
}

func TestBroker_RegisterMuxer_InvalidName(t *testing.T) {
	b := startBroker(t)
	m, err := b.RegisterMuxer("")
	assert.ErrorIs(t, err, ErrMuxerNameInvalid)
	require.NotNil(t, m)
	assert.Equal(t, multiplexing.DefaultMuxerName, m.Name())
}

// ============================================================================
// 指标服务
// ============================================================================

func TestBroker_MetricsServer(t *testing.T) {
	b := startBroker(t, WithMetricsAddr("127.0.0.1:0"))
	addr := b.MetricsAddr()
	require.NotEmpty(t, addr)

	require.NoError(t, b.Publish(types.NewEvent(1, nil)))

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)

	GitCommit = "0123456789abcdef"
	defer func() { GitCommit = "" }()
	assert.Contains(t, VersionInfo(), "(01234567)")
}

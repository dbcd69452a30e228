package broker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/centreon/go-broker/config"
	"github.com/centreon/go-broker/internal/core/frame"
	"github.com/centreon/go-broker/internal/core/metrics"
	"github.com/centreon/go-broker/internal/core/multiplexing"
	"github.com/centreon/go-broker/internal/core/storage"
	"github.com/centreon/go-broker/pkg/interfaces"
	"github.com/centreon/go-broker/pkg/lib/log"
)

var logger = log.Logger("broker")

const (
	// initializeTimeout 启动 Fx 应用的默认超时
	initializeTimeout = 30 * time.Second

	// closeTimeout 关闭 Fx 应用的超时
	closeTimeout = 30 * time.Second

	// streamBatchSize PublishStream 每批发布的事件数
	streamBatchSize = 256
)

// Broker 事件分发核心的宿主入口
//
// Broker 通过 Fx 组装帧解码、存储、缓存、指标和多路复用引擎，
// 对外暴露发布、订阅和生命周期操作。
type Broker struct {
	opts *options
	app  *fx.App

	// 由 Fx 注入
	engine   *multiplexing.Engine
	codec    *frame.Codec
	decoder  *frame.Decoder
	registry *metrics.Registry
	metrics  *metrics.Metrics
	server   *metrics.Server
	storage  storage.InternalEngine

	logFile *os.File

	mu      sync.Mutex
	started bool
	closed  bool
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建 Broker
//
// 创建后引擎即可接收事件（NotStarted 时只入队），
// 调用 Start 后才会启动存储、指标服务并按配置切换到 Running。
//
// 示例：
//
//	b, err := broker.New(
//	    broker.WithDataDir("/var/lib/broker"),
//	    broker.WithMetricsAddr(":9090"),
//	)
func New(opts ...Option) (*Broker, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	b := &Broker{opts: o}

	f, err := setupLogging(o.config.Log)
	if err != nil {
		return nil, err
	}
	b.logFile = f

	b.app, err = buildFxApp(o, b)
	if err == nil {
		err = b.app.Err()
	}
	if err != nil {
		_ = b.restoreLogging()
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return b, nil
}

// Start 创建并立即启动 Broker，等价于 New() + Start()
func Start(ctx context.Context, opts ...Option) (*Broker, error) {
	b, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := b.Start(ctx); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("start broker: %w", err)
	}
	return b, nil
}

// setupLogging 配置日志输出，指定了文件时返回打开的文件
func setupLogging(cfg config.LogConfig) (*os.File, error) {
	if cfg.File == "" {
		return nil, nil
	}

	level := slog.LevelInfo
	if l, ok := log.ParseLevel(cfg.Level); ok {
		level = l
	}

	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	log.SetOutputWithLevel(file, level)
	logger.Info("日志文件初始化成功", "path", cfg.File)
	return file, nil
}

// restoreLogging 恢复 stderr 输出并关闭日志文件
func (b *Broker) restoreLogging() error {
	if b.logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := b.logFile.Close()
	b.logFile = nil
	return err
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动 Broker
//
// 启动所有模块的 OnStart 钩子：存储 GC、/metrics 服务、快照日志，
// 启用 AutoStart 时引擎切换到 Running 并重放缓存。
func (b *Broker) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}
	if b.started {
		return ErrAlreadyStarted
	}

	logger.Info("正在启动 Broker", "version", Version)

	initCtx, cancel := context.WithTimeout(ctx, b.opts.startTimeout)
	defer cancel()

	if err := b.app.Start(initCtx); err != nil {
		logger.Error("Broker 启动失败", "error", err)
		return fmt.Errorf("initialize failed: %w", err)
	}

	b.started = true
	logger.Info("Broker 已启动", "engine", b.engine.ID(), "state", b.engine.State())
	return nil
}

// Stop 停止引擎分发
//
// 入站队列剩余事件先投递给 Muxer，之后发布的事件写入缓存，
// 直到调用 Resume。Fx 应用保持运行。
func (b *Broker) Stop(ctx context.Context) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	return b.engine.Stop(ctx)
}

// Resume 恢复引擎分发
//
// 缓存中的事件先于入站队列重放给 Muxer。
func (b *Broker) Resume(ctx context.Context) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	return b.engine.Start(ctx)
}

// Close 关闭 Broker 并释放所有资源
//
// 引擎关闭前把入站队列投递给 Muxer，缓存和溢出队列随存储一起落盘。
// 重复调用返回 nil。
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	logger.Info("正在关闭 Broker")

	var err error
	if b.started {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if stopErr := b.app.Stop(ctx); stopErr != nil {
			err = multierr.Append(err, fmt.Errorf("stop fx app: %w", stopErr))
		}
		b.started = false
	} else if b.engine != nil {
		// 未启动时 Fx 不会调用 OnStop，引擎仍需标记关闭，存储需要释放
		err = multierr.Append(err, b.engine.Shutdown(context.Background()))
		if b.storage != nil {
			err = multierr.Append(err, b.storage.Close())
		}
	}

	if err != nil {
		logger.Warn("Broker 关闭时出现错误", "error", err)
	} else {
		logger.Info("Broker 已关闭")
	}
	err = multierr.Append(err, b.restoreLogging())
	return err
}

func (b *Broker) checkOpen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              发布
// ════════════════════════════════════════════════════════════════════════════

// Publish 发布单个事件，处理方式取决于引擎状态
func (b *Broker) Publish(ev Event) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	return b.engine.Publish(ev)
}

// PublishBatch 按序发布一批事件
//
// 引擎处于 Running 时立即执行一轮分发，返回值包含 Muxer 投递错误。
func (b *Broker) PublishBatch(evs []Event) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	return b.publishBatch(context.Background(), evs)
}

// publishBatch 按引擎状态发布
//
// Running 时整批入队后执行一轮分发；其他状态逐个走 Publish，
// Stopped 期间的事件因此写入缓存并计入未处理数。
func (b *Broker) publishBatch(ctx context.Context, evs []interfaces.Event) error {
	if len(evs) == 0 {
		return nil
	}
	if b.engine.State() != multiplexing.Running {
		for _, ev := range evs {
			if ev == nil {
				return ErrNilEvent
			}
		}
		for _, ev := range evs {
			if err := b.engine.Publish(ev); err != nil {
				return err
			}
		}
		return nil
	}
	if err := b.engine.PublishBatch(evs); err != nil {
		return err
	}
	_, err := b.engine.FanOut(ctx)
	return err
}

// PublishFrames 解码 buf 中的全部帧并发布
//
// 返回成功解码并发布的事件数。遇到解码错误时，错误之前的事件照常发布，
// 同时返回解码错误。
func (b *Broker) PublishFrames(buf []byte) (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}

	evs, decErr := b.codec.Events(buf)
	b.metrics.RecordDecoded(len(evs))
	if decErr != nil {
		b.metrics.RecordDecodeError(decodeErrorReason(decErr))
	}

	if err := b.publishBatch(context.Background(), evs); err != nil {
		return 0, multierr.Append(err, decErr)
	}
	return len(evs), decErr
}

// PublishStream 从字节流中逐条解码并发布，直到流结束或 ctx 取消
//
// 事件按 streamBatchSize 分批发布。流正常结束时返回 nil。
func (b *Broker) PublishStream(ctx context.Context, r io.Reader) (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}

	fr := frame.NewReader(r, b.decoder)
	batch := make([]interfaces.Event, 0, streamBatchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := b.publishBatch(ctx, batch)
		b.metrics.RecordDecoded(len(batch))
		total += len(batch)
		batch = make([]interfaces.Event, 0, streamBatchSize)
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return total, multierr.Append(err, flush())
		}

		res, err := fr.Next()
		if errors.Is(err, io.EOF) {
			return total, flush()
		}
		if err != nil {
			b.metrics.RecordDecodeError(decodeErrorReason(err))
			logger.WarnContext(ctx, "字节流解码失败", "published", total+len(batch), "error", err)
			return total, multierr.Append(err, flush())
		}
		if res.Skipped > 0 {
			logger.DebugContext(ctx, "帧重同步", "skipped", res.Skipped)
		}

		batch = append(batch, frame.EventFromResult(res))
		if len(batch) >= streamBatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
}

// decodeErrorReason 把解码错误映射为指标标签
func decodeErrorReason(err error) string {
	switch {
	case errors.Is(err, frame.ErrFrameSync):
		return "sync"
	case errors.Is(err, frame.ErrFrameTruncated), errors.Is(err, io.ErrUnexpectedEOF):
		return "truncated"
	case errors.Is(err, frame.ErrInvalidFrameSize):
		return "size"
	case errors.Is(err, frame.ErrChainTooLong):
		return "chain"
	default:
		return "other"
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              订阅与查询
// ════════════════════════════════════════════════════════════════════════════

// RegisterMuxer 注册订阅者，同名 Muxer 已存在时返回已有实例
//
// 名称非法时使用默认名称，同时返回 ErrMuxerNameInvalid。
func (b *Broker) RegisterMuxer(name string, opts ...MuxerOption) (*Muxer, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.engine.RegisterMuxer(name, opts...)
}

// Engine 返回多路复用引擎
func (b *Broker) Engine() *Engine {
	return b.engine
}

// Stats 返回引擎统计
func (b *Broker) Stats() EngineStats {
	return b.engine.Stats()
}

// Config 返回生效的配置副本
func (b *Broker) Config() *config.Config {
	return b.opts.config.Clone()
}

// MetricsAddr 返回 /metrics 服务地址，未启用时返回空字符串
func (b *Broker) MetricsAddr() string {
	if b.server == nil {
		return ""
	}
	return b.server.Addr()
}

// Registry 返回 Prometheus 注册表，宿主可以注册自己的采集器
func (b *Broker) Registry() *metrics.Registry {
	return b.registry
}

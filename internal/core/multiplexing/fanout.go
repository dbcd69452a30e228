package multiplexing

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/centreon/go-broker/pkg/interfaces"
)

// FanOut 执行一轮分发，返回本轮快照中的事件数
//
// 返回的错误包含引擎错误以及各 Muxer 的投递错误（如锁中毒）。
// 获取 Muxer 锁超时不算错误，批次会停放到该 Muxer 的积压列表。
func (e *Engine) FanOut(ctx context.Context) (int, error) {
	ctx, cancel := bindRun(ctx, e.runContext())
	defer cancel()

	n, engErr, muxErr := e.fanOut(ctx)
	return n, multierr.Append(engErr, muxErr)
}

// fanOut 分发的实际实现
//
// 在引擎锁内交换出入站队列并复制 Muxer 列表；没有 Muxer 时队列保持不变。
// 释放引擎锁后并发投递，等待全部 Muxer 完成。
func (e *Engine) fanOut(ctx context.Context) (n int, engErr, muxErr error) {
	e.roundMu.Lock()
	defer e.roundMu.Unlock()

	var (
		batch   []entry
		targets []*Muxer
	)
	engErr = e.withLock(func() error {
		if e.closed {
			return ErrClosed
		}
		if len(e.queue) == 0 || len(e.order) == 0 {
			return nil
		}
		batch = e.queue
		e.queue = nil
		e.warned = false
		targets = slices.Clone(e.order)
		e.metrics.RecordQueue(0, e.unprocessed)
		return nil
	})
	if engErr != nil || len(batch) == 0 {
		return 0, engErr, nil
	}

	start := e.clk.Now()
	errs := make([]error, len(targets))

	var g errgroup.Group
	if e.cfg.FanOutConcurrency > 0 {
		g.SetLimit(e.cfg.FanOutConcurrency)
	}
	for i, m := range targets {
		g.Go(func() error {
			errs[i] = e.deliver(ctx, m, batch)
			return nil
		})
	}
	_ = g.Wait()

	e.metrics.RecordFanOut(e.clk.Since(start))
	logger.DebugContext(ctx, "分发完成", "events", len(batch), "muxers", len(targets))
	return len(batch), nil, multierr.Combine(errs...)
}

// deliver 把批次投递给单个 Muxer
//
// 回送事件不投递给来源 Muxer，除非启用了 Echo。
func (e *Engine) deliver(ctx context.Context, m *Muxer, batch []entry) error {
	evs := make([]interfaces.Event, 0, len(batch))
	for _, ent := range batch {
		if ent.origin == m && !e.cfg.Feedback.Echo {
			continue
		}
		evs = append(evs, ent.ev)
	}
	if len(evs) == 0 {
		return nil
	}

	dctx, cancel := e.clk.WithTimeout(ctx, e.cfg.DeliveryTimeout)
	defer cancel()

	parked, err := m.deliver(dctx, evs)
	if err != nil {
		logger.ErrorContext(ctx, "投递失败", "muxer", m.name, "events", len(evs), "error", err)
		return fmt.Errorf("muxer %q: %w", m.name, err)
	}
	if parked {
		logger.WarnContext(ctx, "Muxer 投递超时，批次已停放", "muxer", m.name, "events", len(evs))
	}
	return nil
}

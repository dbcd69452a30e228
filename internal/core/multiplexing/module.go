package multiplexing

import (
	"context"

	"go.uber.org/fx"

	"github.com/centreon/go-broker/config"
	"github.com/centreon/go-broker/internal/core/metrics"
	"github.com/centreon/go-broker/pkg/interfaces"
)

// Params Multiplexing 模块依赖参数
type Params struct {
	fx.In

	Cache      interfaces.Cache
	Spool      interfaces.SpoolFactory `optional:"true"`
	Metrics    *metrics.Metrics        `optional:"true"`
	Reporter   metrics.Reporter        `optional:"true"`
	UnifiedCfg *config.Config          `optional:"true"`
}

// Module 返回 Multiplexing Fx 模块
//
// 生命周期:
//   - OnStart: AutoStart 时启动引擎；配置了快照间隔时启动快照日志
//   - OnStop: 关闭引擎
func Module() fx.Option {
	return fx.Module("multiplexing",
		fx.Provide(ProvideEngine),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideEngine 提供引擎
func ProvideEngine(p Params) *Engine {
	return New(ConfigFromUnified(p.UnifiedCfg), p.Cache,
		WithSpoolFactory(p.Spool),
		WithMetrics(p.Metrics),
		WithReporter(p.Reporter),
	)
}

type lifecycleParams struct {
	fx.In

	LC         fx.Lifecycle
	Engine     *Engine
	UnifiedCfg *config.Config `optional:"true"`
}

func registerLifecycle(p lifecycleParams) {
	cfg := p.UnifiedCfg
	if cfg == nil {
		cfg = config.NewConfig()
	}
	e := p.Engine

	var snapshots *metrics.SnapshotCollector
	if interval := cfg.Metrics.SnapshotInterval.Duration(); interval > 0 {
		snapshots = metrics.NewSnapshotCollector(e.Reporter(), e, e.clk)
		p.LC.Append(fx.Hook{
			OnStart: func(context.Context) error {
				snapshots.Start(interval)
				return nil
			},
			OnStop: func(context.Context) error {
				snapshots.Stop()
				return nil
			},
		})
	}

	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Engine.AutoStart {
				logger.Info("未启用自动启动，引擎停留在 NotStarted")
				return nil
			}
			return e.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

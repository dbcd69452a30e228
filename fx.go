package broker

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/centreon/go-broker/internal/core/cache"
	"github.com/centreon/go-broker/internal/core/frame"
	"github.com/centreon/go-broker/internal/core/metrics"
	"github.com/centreon/go-broker/internal/core/multiplexing"
	"github.com/centreon/go-broker/internal/core/storage"
	"github.com/centreon/go-broker/pkg/interfaces"
	"github.com/centreon/go-broker/pkg/lib/log"
)

var fxLogger = log.Logger("broker/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//
//	Frame → Storage → Cache → Metrics → Multiplexing
//
// Storage 未配置数据目录时不提供引擎，Cache 退化为内存实现。
func buildFxApp(o *options, b *Broker) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(o.config),

		frame.Module(),   // 帧解码与事件编解码
		storage.Module(), // BadgerDB（可选）
		cache.Module(),   // 缓存回退 + 溢出队列工厂
		metrics.Module(), // Prometheus + 吞吐计数
		multiplexing.Module(),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 组件替换
	// ════════════════════════════════════════════════════════════════════════
	if o.cache != nil {
		c := o.cache
		modules = append(modules, fx.Decorate(func(interfaces.Cache) interfaces.Cache { return c }))
		fxLogger.Debug("使用自定义缓存", "type", fmt.Sprintf("%T", c))
	}
	if o.spools != nil {
		f := o.spools
		modules = append(modules, fx.Decorate(func(interfaces.SpoolFactory) interfaces.SpoolFactory { return f }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. Broker 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectBrokerComponents(b)))

	// ════════════════════════════════════════════════════════════════════════
	// 6. Fx 日志
	// ════════════════════════════════════════════════════════════════════════
	debug := o.config.Log.FxDebug
	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		if debug {
			if l, err := zap.NewDevelopment(); err == nil {
				return &fxevent.ZapLogger{Logger: l}
			}
		}
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}))

	return fx.New(modules...), nil
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入
// ════════════════════════════════════════════════════════════════════════════

// brokerInjectParams Broker 组件注入参数
type brokerInjectParams struct {
	fx.In

	Engine   *multiplexing.Engine
	Decoder  *frame.Decoder
	Registry *metrics.Registry
	Metrics  *metrics.Metrics       `optional:"true"`
	Server   *metrics.Server        `optional:"true"`
	Storage  storage.InternalEngine `optional:"true"`
}

// injectBrokerComponents 把 Fx 构建的组件注入 Broker
func injectBrokerComponents(b *Broker) func(brokerInjectParams) {
	return func(p brokerInjectParams) {
		b.engine = p.Engine
		b.codec = frame.NewCodec(p.Decoder)
		b.decoder = p.Decoder
		b.registry = p.Registry
		b.metrics = p.Metrics
		b.server = p.Server
		b.storage = p.Storage
		fxLogger.Debug("Broker 组件已注入", "engine", p.Engine.ID())
	}
}

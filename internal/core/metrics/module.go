package metrics

import (
	"context"

	"go.uber.org/fx"

	"github.com/centreon/go-broker/config"
)

// Config 指标配置
type Config struct {
	// Enabled 是否注册 Prometheus 采集器
	Enabled bool

	// Namespace 指标名前缀
	Namespace string

	// ListenAddr /metrics 监听地址，为空时不启动 HTTP 服务
	ListenAddr string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Namespace: DefaultNamespace,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled:    cfg.Metrics.Enabled,
		Namespace:  cfg.Metrics.Namespace,
		ListenAddr: cfg.Metrics.ListenAddr,
	}
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Metrics 模块提供的结果
//
// 未启用时 Metrics 和 Server 为 nil，EventCounter 始终可用。
type Result struct {
	fx.Out

	Registry *Registry
	Metrics  *Metrics
	Reporter Reporter
	Server   *Server
}

// Module 返回 Metrics Fx 模块
//
// 生命周期:
//   - OnStart: 配置了监听地址时启动 /metrics 服务
//   - OnStop: 关闭服务
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideMetrics),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideMetrics 提供注册表、采集器和事件计数器
func ProvideMetrics(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	reg := NewRegistry()
	res := Result{Registry: reg, Reporter: NewEventCounter()}

	if !cfg.Enabled {
		return res, nil
	}

	m := NewMetrics(cfg.Namespace)
	if err := reg.Register(m.Collectors()...); err != nil {
		return Result{}, err
	}
	res.Metrics = m

	if cfg.ListenAddr != "" {
		res.Server = NewServer(cfg.ListenAddr, reg)
	}
	return res, nil
}

func registerLifecycle(lc fx.Lifecycle, srv *Server) {
	if srv == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Stop(ctx)
		},
	})
}

package broker

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/centreon/go-broker/config"
	"github.com/centreon/go-broker/pkg/interfaces"
	"github.com/centreon/go-broker/pkg/lib/log"
)

// Option Broker 配置选项
//
// 选项按传入顺序应用，后面的选项覆盖前面的结果。
type Option func(*options) error

// options 内部配置
type options struct {
	// config 统一配置
	config *config.Config

	// cache 替换默认缓存（内存或 Badger）
	cache interfaces.Cache

	// spools 替换默认 Muxer 溢出队列工厂
	spools interfaces.SpoolFactory

	// startTimeout 启动 Fx 应用的超时
	startTimeout time.Duration

	// userFxOptions 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{
		config:       config.NewConfig(),
		startTimeout: initializeTimeout,
	}
}

// ============================================================================
//                              配置来源
// ============================================================================

// WithConfig 使用完整配置
//
// 传入的配置会被复制，后续修改不影响 Broker。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithConfigFile 从 JSON / YAML 文件加载配置
//
// 示例:
//
//	b, err := broker.New(broker.WithConfigFile("/etc/broker/broker.yaml"))
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithEnv 用 BROKER_ 前缀的环境变量覆盖当前配置
func WithEnv() Option {
	return func(o *options) error {
		return config.ApplyEnv(o.config)
	}
}

// ============================================================================
//                              存储与日志
// ============================================================================

// WithDataDir 设置数据目录
//
// 设置后缓存和 Muxer 溢出队列保存在 ${dir}/broker.db，重启后可恢复。
// 空字符串表示只使用内存。
func WithDataDir(dir string) Option {
	return func(o *options) error {
		o.config.Storage.DataDir = dir
		return nil
	}
}

// WithLogFile 将日志输出重定向到指定文件
//
// 文件以追加模式打开，Broker 关闭时恢复输出到 stderr。
func WithLogFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return fmt.Errorf("日志文件路径不能为空")
		}
		o.config.Log.File = path
		return nil
	}
}

// WithLogLevel 设置日志级别（debug / info / warn / error）
func WithLogLevel(level string) Option {
	return func(o *options) error {
		if _, ok := log.ParseLevel(level); !ok {
			return fmt.Errorf("unknown log level %q", level)
		}
		o.config.Log.Level = level
		return nil
	}
}

// WithFxDebug 输出 Fx 依赖注入事件
func WithFxDebug(enable bool) Option {
	return func(o *options) error {
		o.config.Log.FxDebug = enable
		return nil
	}
}

// ============================================================================
//                              指标
// ============================================================================

// WithMetrics 启用或禁用 Prometheus 指标
func WithMetrics(enable bool) Option {
	return func(o *options) error {
		o.config.Metrics.Enabled = enable
		return nil
	}
}

// WithMetricsAddr 设置 /metrics 监听地址并启用指标
func WithMetricsAddr(addr string) Option {
	return func(o *options) error {
		o.config.Metrics.Enabled = true
		o.config.Metrics.ListenAddr = addr
		return nil
	}
}

// ============================================================================
//                              引擎
// ============================================================================

// WithAutoStart 设置 Broker 启动时是否自动把引擎切换到 Running
func WithAutoStart(enable bool) Option {
	return func(o *options) error {
		o.config.Engine.AutoStart = enable
		return nil
	}
}

// WithDeliveryTimeout 设置单个 Muxer 的投递超时
func WithDeliveryTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("delivery timeout must be positive, got %s", d)
		}
		o.config.Engine.DeliveryTimeout = config.Duration(d)
		return nil
	}
}

// WithFanOutConcurrency 限制一轮分发中同时投递的 Muxer 数，0 表示不限
func WithFanOutConcurrency(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("fan-out concurrency cannot be negative, got %d", n)
		}
		o.config.Engine.FanOutConcurrency = n
		return nil
	}
}

// WithFeedback 启用或禁用 Muxer 回送路径
func WithFeedback(enable bool) Option {
	return func(o *options) error {
		o.config.Feedback.Enabled = enable
		return nil
	}
}

// WithCache 使用自定义缓存替换默认实现
func WithCache(c interfaces.Cache) Option {
	return func(o *options) error {
		if c == nil {
			return errors.New("cache is nil")
		}
		o.cache = c
		return nil
	}
}

// WithSpoolFactory 使用自定义溢出队列工厂替换默认实现
func WithSpoolFactory(f interfaces.SpoolFactory) Option {
	return func(o *options) error {
		if f == nil {
			return errors.New("spool factory is nil")
		}
		o.spools = f
		return nil
	}
}

// ============================================================================
//                              扩展
// ============================================================================

// WithStartTimeout 设置 Start 的超时
func WithStartTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("start timeout must be positive, got %s", d)
		}
		o.startTimeout = d
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
//
// 可用于注入额外组件或通过 fx.Invoke 访问内部模块。
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}

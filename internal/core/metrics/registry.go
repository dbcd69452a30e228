package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry 独立的 Prometheus 注册表
//
// 不使用 prometheus.DefaultRegisterer，同一进程内可以创建多个 broker 实例。
type Registry struct {
	mu  sync.Mutex
	reg *prometheus.Registry
}

// NewRegistry 创建注册表并注册 Go 运行时和进程采集器
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg}
}

// Register 注册采集器
//
// 重复注册同一个采集器视为成功。
func (r *Registry) Register(cs ...prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range cs {
		if err := r.reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) && are.ExistingCollector == c {
				continue
			}
			return err
		}
	}
	return nil
}

// Unregister 注销采集器
func (r *Registry) Unregister(c prometheus.Collector) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reg.Unregister(c)
}

// Prometheus 返回底层注册表
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

package cache

import (
	"net/url"

	"go.uber.org/fx"

	"github.com/centreon/go-broker/config"
	"github.com/centreon/go-broker/internal/core/storage"
	"github.com/centreon/go-broker/internal/core/storage/engine"
	"github.com/centreon/go-broker/internal/core/storage/kv"
	"github.com/centreon/go-broker/pkg/interfaces"
)

// Params Cache 模块依赖参数
type Params struct {
	fx.In

	Engine     engine.InternalEngine `optional:"true"`
	Codec      interfaces.EventCodec
	UnifiedCfg *config.Config `optional:"true"`
}

// Result Cache 模块提供的结果
type Result struct {
	fx.Out

	Cache interfaces.Cache
	Spool interfaces.SpoolFactory
}

// Module 返回 Cache Fx 模块
func Module() fx.Option {
	return fx.Module("cache",
		fx.Provide(ProvideCache),
	)
}

// ProvideCache 根据是否启用存储提供缓存和溢出队列工厂
func ProvideCache(p Params) (Result, error) {
	if p.Engine == nil {
		return Result{
			Cache: NewMemory(),
			Spool: MemorySpoolFactory(),
		}, nil
	}

	q, err := NewQueue(storage.NewKVStore(p.Engine, storage.CachePrefix), p.Codec)
	if err != nil {
		return Result{}, err
	}

	spool := MemorySpoolFactory()
	if p.UnifiedCfg == nil || p.UnifiedCfg.Muxer.Persistent {
		spool = PersistentSpoolFactory(p.Engine, p.Codec)
	}
	return Result{Cache: q, Spool: spool}, nil
}

// PersistentSpoolFactory 返回按 Muxer 名称隔离的持久化溢出队列工厂
func PersistentSpoolFactory(eng engine.InternalEngine, codec interfaces.EventCodec) interfaces.SpoolFactory {
	root := kv.New(eng, storage.SpoolPrefix)
	return func(name string) (interfaces.Spool, error) {
		return NewQueue(root.SubStore([]byte(SpoolKey(name))), codec)
	}
}

// MemorySpoolFactory 返回内存溢出队列工厂
func MemorySpoolFactory() interfaces.SpoolFactory {
	return func(string) (interfaces.Spool, error) {
		return NewMemory(), nil
	}
}

// SpoolKey 返回 Muxer 溢出队列的键空间段
//
// 名称经过转义，包含 "/" 的名称不会与其它 Muxer 的键空间重叠。
func SpoolKey(name string) string {
	return url.PathEscape(name) + "/"
}

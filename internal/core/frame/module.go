package frame

import (
	"go.uber.org/fx"

	"github.com/centreon/go-broker/config"
	"github.com/centreon/go-broker/pkg/interfaces"
)

// ConfigFromUnified 从统一配置创建解码配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		MaxChain:      cfg.Codec.MaxChain,
		MaxRecordSize: cfg.Codec.MaxRecordSize,
		MaxResync:     cfg.Codec.MaxResync,
	}
}

// Params Frame 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// ModuleOutput Frame 模块输出
type ModuleOutput struct {
	fx.Out

	Decoder *Decoder
	Codec   interfaces.EventCodec
}

// Module 返回 Frame Fx 模块
func Module() fx.Option {
	return fx.Module("frame",
		fx.Provide(ProvideCodec),
	)
}

// ProvideCodec 提供解码器和事件编解码器
func ProvideCodec(p Params) ModuleOutput {
	dec := NewDecoder(ConfigFromUnified(p.UnifiedCfg))
	return ModuleOutput{Decoder: dec, Codec: NewCodec(dec)}
}

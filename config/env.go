package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "BROKER_"

// ApplyEnv 用环境变量覆盖配置
//
// 变量名由前缀、子配置前缀和字段名组成，例如：
//
//	BROKER_ENGINE_DELIVERY_TIMEOUT=2s
//	BROKER_STORAGE_DATA_DIR=/var/lib/broker
//	BROKER_FEEDBACK_ENABLED=false
//
// 未设置的变量不改变原值。
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyEnvFrom 使用给定的变量表覆盖配置（测试用）
func ApplyEnvFrom(cfg *Config, vars map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: vars}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

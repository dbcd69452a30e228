package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Valid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Engine.AutoStart)
	assert.Equal(t, 5*time.Second, cfg.Engine.DeliveryTimeout.Duration())
	assert.True(t, cfg.Feedback.Enabled)
	assert.False(t, cfg.Storage.Enabled())
}

func TestConfig_ValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"timeout", func(c *Config) { c.Engine.DeliveryTimeout = 0 }, "engine"},
		{"queue", func(c *Config) { c.Muxer.MaxQueueSize = -1 }, "muxer"},
		{"feedback rate", func(c *Config) { c.Feedback.Rate = 0 }, "feedback"},
		{"chain", func(c *Config) { c.Codec.MaxChain = 0 }, "codec"},
		{"namespace", func(c *Config) { c.Metrics.Namespace = "" }, "metrics"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestConfig_FeedbackDisabledSkipsLimits(t *testing.T) {
	cfg := NewConfig()
	cfg.Feedback = FeedbackConfig{Enabled: false}
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"engine": {"delivery_timeout": "250ms"},
		"storage": {"data_dir": "/var/lib/broker"},
		"muxer": {"max_queue_size": 10}
	}`), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Engine.DeliveryTimeout.Duration())
	assert.True(t, cfg.Engine.AutoStart, "unset fields keep defaults")
	assert.Equal(t, 10, cfg.Muxer.MaxQueueSize)
	assert.Equal(t, filepath.Join("/var/lib/broker", "broker.db"), cfg.Storage.DBPath())
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  delivery_timeout: 2s
  auto_start: false
feedback:
  enabled: true
  rate: 50
  burst: 5
storage:
  gc_interval: 60000000000
`), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Engine.DeliveryTimeout.Duration())
	assert.False(t, cfg.Engine.AutoStart)
	assert.Equal(t, 50.0, cfg.Feedback.Rate)
	assert.Equal(t, time.Minute, cfg.Storage.GCInterval.Duration())
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"engine": {"delivery_timeout": "soon"}}`))
	assert.Error(t, err)

	_, err = FromYAML([]byte("engine: [1, 2"))
	assert.Error(t, err)
}

func TestApplyEnvFrom(t *testing.T) {
	cfg := NewConfig()
	err := ApplyEnvFrom(cfg, map[string]string{
		"BROKER_ENGINE_DELIVERY_TIMEOUT": "750ms",
		"BROKER_STORAGE_DATA_DIR":        "/tmp/broker",
		"BROKER_FEEDBACK_ENABLED":        "false",
		"BROKER_MUXER_MAX_QUEUE_SIZE":    "42",
		"BROKER_LOG_FILE":                "/tmp/broker.log",
		"BROKER_LOG_LEVEL":               "multiplexing=debug,info",
	})
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Engine.DeliveryTimeout.Duration())
	assert.Equal(t, "/tmp/broker", cfg.Storage.DataDir)
	assert.False(t, cfg.Feedback.Enabled)
	assert.Equal(t, 42, cfg.Muxer.MaxQueueSize)
	assert.Equal(t, "/tmp/broker.log", cfg.Log.File)
	assert.Equal(t, "info", cfg.Log.Level, "BROKER_LOG_LEVEL belongs to the log package")
	assert.True(t, cfg.Engine.AutoStart, "unset variables keep existing values")
}

func TestApplyEnvFrom_InvalidValue(t *testing.T) {
	err := ApplyEnvFrom(NewConfig(), map[string]string{"BROKER_MUXER_MAX_QUEUE_SIZE": "many"})
	assert.Error(t, err)
}

func TestDuration_JSONRoundTrip(t *testing.T) {
	cfg := NewConfig()
	data, err := cfg.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"delivery_timeout": "5s"`)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput_ExistingLogger(t *testing.T) {
	l := Logger("test/lazy")

	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	l.Info("after switch", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "after switch")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "component=test/lazy")
}

func TestLazyLogger_ContextVariants(t *testing.T) {
	l := Logger("test/ctx")

	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	ctx := context.Background()
	l.InfoContext(ctx, "info ctx")
	l.WarnContext(ctx, "warn ctx")
	l.ErrorContext(ctx, "error ctx")

	out := buf.String()
	assert.Contains(t, out, "info ctx")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "error ctx")
}

func TestParseLevels(t *testing.T) {
	lv := ParseLevels("multiplexing=debug, storage=warn,error", "json")

	require.NotNil(t, lv.Default)
	assert.Equal(t, slog.LevelError, *lv.Default)
	assert.Equal(t, slog.LevelDebug, lv.Subsystems["multiplexing"])
	assert.Equal(t, slog.LevelWarn, lv.Subsystems["storage"])
	assert.Equal(t, FormatJSON, lv.Format)
	assert.Equal(t, slog.LevelDebug, lv.Lowest())
}

func TestLevels_Enabled(t *testing.T) {
	lv := ParseLevels("multiplexing=debug,info", "")

	assert.True(t, lv.Enabled("core/multiplexing", slog.LevelDebug), "last segment match")
	assert.False(t, lv.Enabled("core/frame", slog.LevelDebug), "falls back to default")
	assert.True(t, lv.Enabled("core/frame", slog.LevelWarn))

	empty := ParseLevels("", "")
	assert.True(t, empty.Enabled("anything", slog.LevelDebug))
	assert.Equal(t, slog.LevelInfo, empty.Lowest())
}

func TestParseLevel_Unknown(t *testing.T) {
	_, ok := ParseLevel("verbose")
	assert.False(t, ok)

	level, ok := ParseLevel("WARNING")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc", TruncateID("abc", 8))
	assert.Equal(t, "abcdefgh", TruncateID("abcdefghijk", 8))
}

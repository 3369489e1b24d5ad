package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger(t *testing.T, cfg *Config, opts ...Option) (*BaseLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append(opts, WithWriter(&buf))
	l, err := New(cfg, opts...)
	require.NoError(t, err)
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "nil config uses default", config: nil},
		{name: "partial config", config: &Config{Level: DebugLevel, Format: JSONFormat}},
		{name: "file without path", config: &Config{EnableFile: true}, wantErr: ErrInvalidOutputPath},
		{name: "unknown level", config: &Config{Level: "verbose"}, wantErr: ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestLoggerKeyValues(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Level: DebugLevel, Format: JSONFormat})

	l.Info("slot spun", "user_id", uint64(42), "bet", 450, "error", errors.New("boom"))
	l.Debug("debug line")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "slot spun", lines[0]["msg"])
	assert.Equal(t, "info", lines[0]["level"])
	assert.EqualValues(t, 42, lines[0]["user_id"])
	assert.EqualValues(t, 450, lines[0]["bet"])
	assert.Equal(t, "boom", lines[0]["error"])
	assert.Equal(t, "debug", lines[1]["level"])
}

func TestLoggerLevelFilter(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Level: WarnLevel, Format: JSONFormat})

	l.Info("hidden")
	l.Warn("shown")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestLoggerNamedAndFields(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Format: JSONFormat})

	l.Named("service.gacha").WithFields("pool", "roles").Info("drawn")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "service.gacha", lines[0]["logger"])
	assert.Equal(t, "roles", lines[0]["pool"])
}

func TestLoggerContextFields(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Format: JSONFormat})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithCaller(ctx, 1001, 2002)
	l.InfoContext(ctx, "purchase", "item_id", 3)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.EqualValues(t, 1001, lines[0]["user_id"])
	assert.EqualValues(t, 2002, lines[0]["guild_id"])
	assert.EqualValues(t, 3, lines[0]["item_id"])
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
}

func TestLoggerRedactsSensitiveKeys(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Format: JSONFormat})

	l.Info("auth", "token", "secret-value")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "***REDACTED***", lines[0]["token"])
}

func TestLevelHook(t *testing.T) {
	var captured []string
	hook := LevelHook(zapcore.ErrorLevel, func(entry zapcore.Entry, _ []zapcore.Field) {
		captured = append(captured, entry.Message)
	})
	l, _ := newBufferLogger(t, &Config{Format: JSONFormat}, WithHooks(hook))

	l.Warn("not reported")
	l.Error("store unreachable")

	assert.Equal(t, []string{"store unreachable"}, captured)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "economy.log")
	l, err := New(&Config{Format: JSONFormat, EnableFile: true, OutputPath: path})
	require.NoError(t, err)

	l.Info("written to file")
	_ = l.Sync()
	assert.FileExists(t, path)
}

func TestNoopAndDefault(t *testing.T) {
	n := NewNoop()
	n.Info("ignored")
	assert.Same(t, n, n.Named("x"))
	assert.NoError(t, n.Sync())

	assert.NotNil(t, Default())
	l, _ := newBufferLogger(t, nil)
	SetDefault(l)
	defer SetDefault(NewNoop())
	assert.Same(t, l, Default())
}

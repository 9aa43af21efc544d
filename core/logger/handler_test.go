package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureWriter) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, strings.TrimSpace(string(p)))
	return nil
}

func (c *captureWriter) last(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.lines, "expected a log line")
	return c.lines[len(c.lines)-1]
}

func newTestLogger(format logFormat, level slog.Level) (*slog.Logger, *captureWriter) {
	w := &captureWriter{}
	h := newStructuredHandler(handlerConfig{level: level, writer: w, format: format})
	return slog.New(h), w
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, w := newTestLogger(formatKV, slog.LevelInfo)
	ctx := WithUpdateMeta(WithRID(Background(), "rid-123"), 42, 7, 9)

	LogEvent(ctx, log.With("component", "shop"), slog.LevelInfo, "proof.submitted",
		slog.String("status", "OK"),
		slog.String("tx_id", "tx-1"),
	)

	tokens := strings.Split(w.last(t), " ")
	want := []string{"ts=", "level=INFO", "component=shop", "event=proof.submitted", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "tx_id=tx-1"}
	require.GreaterOrEqual(t, len(tokens), len(want))
	for i, prefix := range want {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %q, want prefix %q", i, tokens[i], prefix)
	}
}

func TestStructuredHandlerJSONFields(t *testing.T) {
	log, w := newTestLogger(formatJSON, slog.LevelInfo)
	ctx := WithRID(Background(), "12:34:56")

	LogEvent(ctx, log, slog.LevelError, "deploy.failed",
		slog.String("outcome", "exploded"),
		slog.Duration("duration", 1500*time.Millisecond),
		slog.Group("http", slog.Int("code", 502)),
		slog.String("empty", ""),
	)

	line := w.last(t)
	require.True(t, strings.HasPrefix(line, `{"ts":`), line)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "ERROR", got["level"])
	assert.Equal(t, "app", got["component"])
	assert.Equal(t, "deploy.failed", got["event"])
	assert.Equal(t, CompactRID("12:34:56"), got["rid"])
	assert.Equal(t, "12:34:56", got["rid_full"])
	assert.EqualValues(t, 1500, got["duration_ms"])
	assert.EqualValues(t, 502, got["http.code"])
	assert.Contains(t, got, "ts_unix_nano")
	assert.NotContains(t, got, "outcome")
	assert.NotContains(t, got, "empty")
}

func TestStructuredHandlerExplicitAttrsWin(t *testing.T) {
	log, w := newTestLogger(formatKV, slog.LevelInfo)
	ctx := WithUpdateMeta(Background(), 1, 100, 200)

	log.LogAttrs(ctx, slog.LevelInfo, "", slog.String("event", "x"), slog.Int64("user_id", 5))

	line := w.last(t)
	assert.Contains(t, line, "user_id=5")
	assert.Contains(t, line, "chat_id=200")
	assert.NotContains(t, line, "rid_full=")
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	log, w := newTestLogger(formatKV, slog.LevelWarn)
	log.Info("skipped")
	log.Warn("kept", "note", "two words")

	require.Len(t, w.lines, 1)
	assert.Contains(t, w.lines[0], "event=kept")
	assert.Contains(t, w.lines[0], `note="two words"`)
}

func TestAsyncWriterFlushAndClose(t *testing.T) {
	var a, b bytes.Buffer
	aw := newAsyncWriter([]io.Writer{&a, &b}, 16)

	require.NoError(t, aw.Write([]byte("one\n")))
	require.NoError(t, aw.Write([]byte("two\n")))
	require.NoError(t, aw.Flush())
	assert.Equal(t, "one\ntwo\n", a.String())
	assert.Equal(t, a.String(), b.String())

	require.NoError(t, aw.Close())
	require.NoError(t, aw.Close())
}

func TestCompactRID(t *testing.T) {
	assert.Equal(t, "z.10.a", CompactRID("35:36:10"))
	assert.Equal(t, "rid-1", CompactRID("rid-1"))
	assert.Equal(t, "1:x:2", CompactRID("1:x:2"))
	assert.Equal(t, "35:36:10", BuildRID(35, 36, 10))
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var allowed int
	for n := 0; n < 9; n++ {
		if s.Allow() {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)

	s.Set(0, 0)
	assert.True(t, s.Allow())

	num, den := parseRatioSpec("2/5")
	assert.Equal(t, 2, num)
	assert.Equal(t, 5, den)
}

func TestHelpersTolerateUninitializedLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Info(context.Background(), "shop", "noop")
		LogEvent(context.TODO(), nil, slog.LevelInfo, "noop")
	})
	assert.Equal(t, "a\tb", Sanitize("a\x00\tb"))
	assert.Equal(t, "ab", SanitizeLimit("abc", 2))
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTextLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTextLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=dbg", "a=1",
		"level=INFO", "msg=inf", "b=2",
		"level=WARN", "msg=wrn", "c=3",
		"level=ERROR", "msg=err", "d=4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTextLogger(t)

	log.With("module", "quota").Info(context.Background(), "admitted", "cost", 8)

	out := buf.String()
	assert.Contains(t, out, "module=quota")
	assert.Contains(t, out, "cost=8")
}

func TestNewJSONLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, "warn")
	ctx := context.Background()

	log.Info(ctx, "hidden")
	log.Warn(ctx, "shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestDiscard_DoesNotPanic(t *testing.T) {
	log := Discard()
	log.With("x", 1).Error(context.TODO(), "dropped")
}

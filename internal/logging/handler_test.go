package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferedUntilFlush(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler()
	log := slog.New(h)

	log.Info("before flush", "n", 1)
	require.Zero(t, buf.Len())

	h.SetStream(&buf)
	h.Flush()
	require.Equal(t, "info: before flush n=1\n", buf.String())
}

func TestFlushDropsRecordsBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler()
	log := slog.New(h)

	log.Debug("hidden")
	log.Warn("shown")

	h.SetLevel(slog.LevelWarn)
	h.SetStream(&buf)
	h.Flush()

	require.Equal(t, "warning: shown\n", buf.String())

	log.Info("also hidden")
	require.Equal(t, "warning: shown\n", buf.String())
}

func TestDerivedHandlersShareConfiguration(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler()
	log := slog.New(h.WithGroup("backlight")).With("device", "intel_backlight")

	h.SetStream(&buf)
	h.SetVerbose(false)
	h.Flush()

	log.Error("write failed", "raw", 120)
	require.Equal(t, "error: write failed device=intel_backlight raw=120\n", buf.String())
}

func TestQuotesStringsWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler()
	h.SetStream(&buf)
	h.Flush()

	slog.New(h).Info("bind", "error", "no such file")
	require.Equal(t, "info: bind error=\"no such file\"\n", buf.String())
}

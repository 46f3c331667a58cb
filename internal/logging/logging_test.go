package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/leengari/recordstore/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, ParseLevel(tt.in), tt.want, tt.in)
	}
}

func TestFanoutHandlerRespectsSinkLevels(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	fanout := newFanoutHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(fanout).With(slog.String("database", "people"))

	assert.Assert(t, fanout.Enabled(context.Background(), slog.LevelDebug))

	logger.Debug("indexes rebuilt")
	logger.Warn("csv row width differs from header")

	assert.Equal(t, strings.Count(debugBuf.String(), "\n"), 2)
	assert.Equal(t, strings.Count(warnBuf.String(), "\n"), 1)
	assert.Assert(t, strings.Contains(warnBuf.String(), "database=people"))
}

func TestSetupLoggerWithoutSeq(t *testing.T) {
	logger, closeFn := SetupLogger(config.LoggingConfig{Level: "warn"})
	defer closeFn()

	assert.Assert(t, logger != nil)
	assert.Assert(t, !logger.Enabled(context.Background(), slog.LevelInfo))
	assert.Assert(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

// failingSink stands in for a remote sink that cannot be reached.
type failingSink struct{ calls int }

func (f *failingSink) Enabled(context.Context, slog.Level) bool { return true }
func (f *failingSink) Handle(context.Context, slog.Record) error {
	f.calls++
	return errors.New("seq unreachable")
}
func (f *failingSink) WithAttrs([]slog.Attr) slog.Handler { return f }
func (f *failingSink) WithGroup(string) slog.Handler      { return f }

func TestFanoutHandlerKeepsGoingPastFailingSink(t *testing.T) {
	var buf bytes.Buffer
	remote := &failingSink{}
	fanout := newFanoutHandler(remote, slog.NewTextHandler(&buf, nil))

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "record inserted", 0)
	err := fanout.Handle(context.Background(), r)

	assert.ErrorContains(t, err, "seq unreachable")
	assert.Equal(t, remote.calls, 1)
	assert.Assert(t, strings.Contains(buf.String(), "record inserted"))
}

func TestNewFanoutHandlerCollapsesSingleSink(t *testing.T) {
	console := slog.NewTextHandler(&bytes.Buffer{}, nil)
	assert.Equal(t, newFanoutHandler(console, nil), slog.Handler(console))
}

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceHandler(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		sourceFrom slog.Level
		wantSource bool
	}{
		{name: "info below threshold", level: slog.LevelInfo, sourceFrom: slog.LevelWarn, wantSource: false},
		{name: "warn at threshold", level: slog.LevelWarn, sourceFrom: slog.LevelWarn, wantSource: true},
		{name: "error above threshold", level: slog.LevelError, sourceFrom: slog.LevelWarn, wantSource: true},
		{name: "debug mode shows info source", level: slog.LevelInfo, sourceFrom: slog.LevelDebug, wantSource: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			log := slog.New(NewSourceHandler(base, tt.sourceFrom))

			log.Log(context.Background(), tt.level, "subscription renewed", "tenant_id", 7)

			out := buf.String()
			assert.Equal(t, tt.wantSource, bytes.Contains([]byte(out), []byte("source=")), out)
			assert.Contains(t, out, "tenant_id=7")
		})
	}
}

func TestSourceHandler_KeepsGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	log := slog.New(NewSourceHandler(base, slog.LevelError)).With("component", "lifecycle").WithGroup("sub")

	log.Info("activated", "id", 3)

	out := buf.String()
	assert.Contains(t, out, "component=lifecycle")
	assert.Contains(t, out, "sub.id=3")
	assert.NotContains(t, out, "source=")
}

func TestSourceHandler_RespectsBaseLevel(t *testing.T) {
	base := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	h := NewSourceHandler(base, slog.LevelError)

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

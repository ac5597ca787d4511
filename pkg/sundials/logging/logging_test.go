package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	l.With("session", "abc").Warn(context.Background(), "native solver error",
		NativeReport(-1, "CVODE", "CVode", "mxstep steps taken"),
		Vector("y", []float64{1, -3}))

	out := buf.String()
	assert.Contains(t, out, "session=abc")
	assert.Contains(t, out, "native.code=-1")
	assert.Contains(t, out, "native.module=CVODE")
	assert.Contains(t, out, "y.len=2")
	assert.Contains(t, out, "y.maxnorm=3")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error(context.Background(), "dropped")
	l.With("k", "v").Info(context.Background(), "dropped")
}

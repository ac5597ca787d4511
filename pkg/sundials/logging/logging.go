package logging

import (
	"context"
	"io"
	"log/slog"
	"math"
)

// Logger is the subset of slog used by solver sessions. Sessions log through
// this interface only, so tests and applications can substitute their own.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

// New returns a Logger backed by the provided slog.Logger. Passing nil binds to
// slog.Default().
func New(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

// Discard returns a Logger that drops every record.
func Discard() Logger {
	return &slogLogger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

// Vector summarises a state vector as its length and max norm. Solver state
// can be large; log this instead of the raw payload.
func Vector(key string, v []float64) slog.Attr {
	var norm float64
	for _, x := range v {
		norm = math.Max(norm, math.Abs(x))
	}
	return slog.Group(key, slog.Int("len", len(v)), slog.Float64("maxnorm", norm))
}

// NativeReport groups the fields of an error or info report emitted by the
// native library.
func NativeReport(code int, module, function, msg string) slog.Attr {
	return slog.Group("native",
		slog.Int("code", code),
		slog.String("module", module),
		slog.String("function", function),
		slog.String("msg", msg),
	)
}

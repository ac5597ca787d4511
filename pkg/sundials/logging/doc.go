// Package logging provides a minimal logging facade for solver sessions.
//
// The Logger interface wraps a subset of log/slog with context-aware methods:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// # Default Implementation
//
//	// Use default logger (slog.Default())
//	logger := logging.New(nil)
//
//	// Use custom slog.Logger
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	s, err := cvode.Init(ctx, cfg, rhs, 0, y0,
//	    sundials.WithLogger(logging.New(slog.New(handler))))
//
// # What sessions log
//
// Sessions log at debug level when they are created and closed, and at warn
// level when the native library reports an error without a user error
// handler, or when a second callback fault is dropped because one is already
// stashed. Every record carries a "session" attribute.
//
// State vectors are never logged in full; use Vector to attach a length and
// max-norm summary:
//
//	logger.Debug(ctx, "reinit", logging.Vector("y0", y0))
package logging

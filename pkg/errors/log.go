package errors

import (
	"context"
	"log/slog"
)

// LogHandler is an ErrorHandler that writes structured records through slog.
type LogHandler struct {
	// Logger receives the records. Nil means slog.Default().
	Logger *slog.Logger
	// Verbose adds stack traces to the records.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs a MotionError. Watchdog and budget events are warnings,
// everything else is an error.
func (h *LogHandler) HandleError(err *MotionError) {
	if err == nil {
		return
	}
	level := slog.LevelError
	if err.Kind == KindWatchdog || err.Kind == KindBudgetExceeded || err.Kind == KindKindMismatch {
		level = slog.LevelWarn
	}
	attrs := []any{
		slog.String("op", err.Op),
		slog.String("kind", err.Kind.String()),
		slog.String("recovery", StrategyFor(err.Kind).String()),
	}
	if err.Handle != 0 {
		attrs = append(attrs, slog.Uint64("handle", err.Handle))
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	msg := "motion error"
	if err.Err != nil {
		msg = err.Err.Error()
	}
	h.logger().Log(context.Background(), level, msg, attrs...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{slog.Any("value", err.Value)}
	if err.Op != "" {
		attrs = append(attrs, slog.String("op", err.Op))
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().Error("motion panic", attrs...)
}

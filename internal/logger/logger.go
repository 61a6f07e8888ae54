package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger is a thin slog wrapper that carries the package/file/function
// breadcrumbs as structured attributes. Chaining returns copies, so a
// Logger can be stored on a struct and scoped per call site.
type Logger struct {
	slog *slog.Logger
}

func New(pkg string) Logger {
	return Logger{
		slog: slog.Default().With("package", pkg),
	}
}

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

func (l Logger) File(file string) Logger {
	return Logger{slog: l.slog.With("file", file)}
}

func (l Logger) Function(function string) Logger {
	return Logger{slog: l.slog.With("function", function)}
}

func (l Logger) With(args ...any) Logger {
	return Logger{slog: l.slog.With(args...)}
}

func (l Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

func (l Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Er logs an error without returning one, for paths that recover or
// continue.
func (l Logger) Er(msg string, err error, args ...any) {
	l.slog.Error(msg, append([]any{"error", err}, args...)...)
}

func (l Logger) ErMsg(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// Err logs and returns an error wrapping the cause, so call sites can
// `return log.Err(...)` in one statement.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.slog.Error(msg, append([]any{"error", err}, args...)...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Error logs and returns a new error with no underlying cause.
func (l Logger) Error(msg string, args ...any) error {
	l.slog.Error(msg, args...)
	return fmt.Errorf("%s", msg)
}

func (l Logger) ErrMsg(msg string) error {
	l.slog.Error(msg)
	return fmt.Errorf("%s", msg)
}

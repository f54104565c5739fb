package log

import (
	"context"
	"log/slog"
	"sync"
)

// slogLogger adapts *slog.Logger to Logger.
type slogLogger struct {
	l *slog.Logger
}

var (
	overrideMu sync.RWMutex
	override   Logger
)

// SetLogger replaces the Logger returned by GetLogger. nil restores the
// slog default.
func SetLogger(l Logger) {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	override = l
}

// GetLogger returns the Logger set by SetLogger, or one backed by the
// current default slog logger.
func GetLogger() Logger {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	if override != nil {
		return override
	}
	return &slogLogger{}
}

func (s *slogLogger) logger() *slog.Logger {
	if s.l == nil {
		return slog.Default()
	}
	return s.l
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.logger().Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.logger().Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.logger().Warn(msg, fields...) }

func (s *slogLogger) Error(msg string, fields ...any) {
	s.logger().Error(msg, errorFirst(fields)...)
}

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.logger().With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger().Enabled(ctx, slog.Level(level))
}

// errorFirst turns a leading bare error into an ErrAttr.
func errorFirst(fields []any) []any {
	if len(fields) == 0 {
		return fields
	}
	if err, ok := fields[0].(error); ok {
		out := make([]any, 0, len(fields)+1)
		out = append(out, ErrAttr(err))
		return append(out, fields[1:]...)
	}
	return fields
}

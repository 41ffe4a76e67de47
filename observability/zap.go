package observability

import "go.uber.org/zap"

// ZapLogger adapts a *zap.Logger to the Logger interface, used by the
// pipeline orchestrator to report per-phase progress. Library code
// otherwise defaults to NopLogger; callers wire ZapLogger in explicitly.
type ZapLogger struct {
	l *zap.Logger
}

// NewZapLogger wraps l as a Logger.
func NewZapLogger(l *zap.Logger) Logger {
	return ZapLogger{l: l}
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key(), f.Value())
	}
	return out
}

func (z ZapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, toZapFields(fields)...) }
func (z ZapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, toZapFields(fields)...) }
func (z ZapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, toZapFields(fields)...) }
func (z ZapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, toZapFields(fields)...) }
func (z ZapLogger) With(fields ...Field) Logger {
	return ZapLogger{l: z.l.With(toZapFields(fields)...)}
}

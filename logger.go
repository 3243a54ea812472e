package jwtauth

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// The adapters below turn the slog-style key/value arguments used across this
// module into the structured fields of other logging libraries. A trailing key
// without a value is logged under "!BADKEY", the way log/slog does it.

const badKey = "!BADKEY"

func fieldPairs(args []any, emit func(key string, value any)) {
	for i := 0; i < len(args); {
		key, ok := args[i].(string)
		if !ok {
			emit(badKey, args[i])
			i++
			continue
		}
		if i+1 >= len(args) {
			emit(badKey, key)
			return
		}
		emit(key, args[i+1])
		i += 2
	}
}

// NewLogrusLogger returns a Logger adapter for logrus.FieldLogger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLoggerAdapter{l}
}

type logrusLoggerAdapter struct{ l logrus.FieldLogger }

func (a *logrusLoggerAdapter) entry(args []any) logrus.FieldLogger {
	if len(args) == 0 {
		return a.l
	}
	fields := make(logrus.Fields, len(args)/2)
	fieldPairs(args, func(k string, v any) {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		fields[k] = v
	})
	return a.l.WithFields(fields)
}

func (a *logrusLoggerAdapter) Debug(msg string, args ...any) { a.entry(args).Debug(msg) }
func (a *logrusLoggerAdapter) Info(msg string, args ...any)  { a.entry(args).Info(msg) }
func (a *logrusLoggerAdapter) Warn(msg string, args ...any)  { a.entry(args).Warn(msg) }
func (a *logrusLoggerAdapter) Error(msg string, args ...any) { a.entry(args).Error(msg) }

// NewZapLogger returns a Logger adapter for zap.Logger.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLoggerAdapter{l}
}

type zapLoggerAdapter struct{ l *zap.Logger }

func zapFields(args []any) []zap.Field {
	fields := make([]zap.Field, 0, len(args)/2)
	fieldPairs(args, func(k string, v any) {
		fields = append(fields, zap.Any(k, v))
	})
	return fields
}

func (a *zapLoggerAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, zapFields(args)...) }
func (a *zapLoggerAdapter) Info(msg string, args ...any)  { a.l.Info(msg, zapFields(args)...) }
func (a *zapLoggerAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, zapFields(args)...) }
func (a *zapLoggerAdapter) Error(msg string, args ...any) { a.l.Error(msg, zapFields(args)...) }

// NewZerologLogger returns a Logger adapter for zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLoggerAdapter{l}
}

type zerologLoggerAdapter struct{ l zerolog.Logger }

func zerologEvent(e *zerolog.Event, msg string, args []any) {
	fieldPairs(args, func(k string, v any) {
		switch val := v.(type) {
		case error:
			e = e.AnErr(k, val)
		case fmt.Stringer:
			e = e.Stringer(k, val)
		default:
			e = e.Interface(k, val)
		}
	})
	e.Msg(msg)
}

func (a *zerologLoggerAdapter) Debug(msg string, args ...any) { zerologEvent(a.l.Debug(), msg, args) }
func (a *zerologLoggerAdapter) Info(msg string, args ...any)  { zerologEvent(a.l.Info(), msg, args) }
func (a *zerologLoggerAdapter) Warn(msg string, args ...any)  { zerologEvent(a.l.Warn(), msg, args) }
func (a *zerologLoggerAdapter) Error(msg string, args ...any) { zerologEvent(a.l.Error(), msg, args) }

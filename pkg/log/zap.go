package log

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapLogger struct {
	s     *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewZapLogger returns a Logger backed by zap. format "console" selects the
// console encoder, anything else emits JSON.
func NewZapLogger(w io.Writer, level zap.AtomicLevel, format string) Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  StacktraceKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &zapLogger{s: l.Sugar(), level: level}
}

func (z *zapLogger) Debug(msg string, fields ...any) {
	z.s.Debugw(msg, normalizeFields(fields)...)
}

func (z *zapLogger) Info(msg string, fields ...any) {
	z.s.Infow(msg, normalizeFields(fields)...)
}

func (z *zapLogger) Warn(msg string, fields ...any) {
	z.s.Warnw(msg, normalizeFields(fields)...)
}

func (z *zapLogger) Error(msg string, fields ...any) {
	z.s.Errorw(msg, normalizeFields(fields)...)
}

func (z *zapLogger) With(fields ...any) Logger {
	return &zapLogger{s: z.s.With(normalizeFields(fields)...), level: z.level}
}

func (z *zapLogger) Enabled(_ context.Context, level Level) bool {
	return z.level.Enabled(toZapLevel(level))
}

func toZapLevel(level Level) zapcore.Level {
	switch {
	case level <= LevelDebug:
		return zapcore.DebugLevel
	case level <= LevelInfo:
		return zapcore.InfoLevel
	case level <= LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

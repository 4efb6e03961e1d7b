package log

import (
	"context"
	"io"
	"log/slog"
)

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger returns a Logger writing through log/slog. level may be
// changed later through the LevelVar.
func NewSlogLogger(w io.Writer, level *slog.LevelVar, format string) Logger {
	return &slogLogger{l: slog.New(newSlogHandler(w, level, format))}
}

// FromSlog adapts an existing *slog.Logger.
func FromSlog(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, fields ...any) {
	s.l.Debug(msg, normalizeFields(fields)...)
}

func (s *slogLogger) Info(msg string, fields ...any) {
	s.l.Info(msg, normalizeFields(fields)...)
}

func (s *slogLogger) Warn(msg string, fields ...any) {
	s.l.Warn(msg, normalizeFields(fields)...)
}

func (s *slogLogger) Error(msg string, fields ...any) {
	s.l.Error(msg, normalizeFields(fields)...)
}

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(normalizeFields(fields)...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}

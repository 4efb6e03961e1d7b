package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ErrAttrKey is the attribute key errors are logged under.
const ErrAttrKey = "error"

// SetupLogger installs a JSON slog logger as the slog default.
func SetupLogger(loglevel string) error {
	level, err := ParseLevel(loglevel)
	if err != nil {
		return err
	}
	var lv slog.LevelVar
	lv.Set(slog.Level(level))
	slog.SetDefault(slog.New(newSlogHandler(os.Stdout, &lv, "json")))
	return nil
}

// ParseLevel converts a level name to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %q", level)
	}
}

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// newSlogHandler builds the handler chain shared by SetupLogger and the slog
// backend. Level, message and source keys are renamed to the Cloud Logging
// format.
func newSlogHandler(w io.Writer, level slog.Leveler, format string) slog.Handler {
	ops := &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr.Key = "severity"
			case slog.MessageKey:
				attr.Key = "message"
			case slog.SourceKey:
				attr.Key = "logging.googleapis.com/sourceLocation"
			}
			return attr
		},
	}

	var handler slog.Handler
	if format == "console" {
		handler = slog.NewTextHandler(w, ops)
	} else {
		handler = slog.NewJSONHandler(w, ops)
	}
	return WrapByErrFmtHandler(handler)
}

// normalizeFields moves a leading error value under ErrAttrKey so that
// logger.Error("msg", err, "k", v) produces a well-formed key/value list.
func normalizeFields(fields []any) []any {
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			out := make([]any, 0, len(fields)+1)
			out = append(out, ErrAttrKey, err)
			return append(out, fields[1:]...)
		}
	}
	return fields
}

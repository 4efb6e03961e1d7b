package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/zap"

	bbErrors "github.com/YuminosukeSato/bayesbench/pkg/errors"
)

// Backend names accepted by Config.Backend.
const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
	BackendZap     = "zap"
)

// Config selects the logging backend.
type Config struct {
	Backend string    // "slog" (default), "zerolog" or "zap"
	Level   string    // "debug", "info", "warn" or "error"
	Format  string    // "json" (default) or "console"
	Output  io.Writer // defaults to os.Stdout
}

type provider struct {
	mu      sync.RWMutex
	backend string
	root    Logger

	slogLevel *slog.LevelVar
	zapLevel  zap.AtomicLevel
}

// NewProvider builds a LoggerProvider for cfg.
func NewProvider(cfg Config) (LoggerProvider, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	p := &provider{backend: strings.ToLower(cfg.Backend)}
	switch p.backend {
	case BackendZerolog:
		p.root = NewZerologLogger(out, level, cfg.Format)
	case BackendZap:
		p.zapLevel = zap.NewAtomicLevelAt(toZapLevel(level))
		p.root = NewZapLogger(out, p.zapLevel, cfg.Format)
	case BackendSlog, "":
		p.backend = BackendSlog
		p.slogLevel = new(slog.LevelVar)
		p.slogLevel.Set(slog.Level(level))
		p.root = NewSlogLogger(out, p.slogLevel, cfg.Format)
	default:
		return nil, bbErrors.NewValidationError("log.backend", "must be one of slog, zerolog, zap", cfg.Backend)
	}
	return p, nil
}

func (p *provider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root
}

func (p *provider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

func (p *provider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.backend {
	case BackendZerolog:
		zerolog.SetGlobalLevel(toZerologLevel(level))
	case BackendZap:
		p.zapLevel.SetLevel(toZapLevel(level))
	default:
		p.slogLevel.Set(slog.Level(level))
	}
}

var (
	globalMu       sync.RWMutex
	globalProvider LoggerProvider = mustDefaultProvider()
)

func mustDefaultProvider() LoggerProvider {
	p, err := NewProvider(Config{Backend: BackendSlog, Level: "info", Output: os.Stderr})
	if err != nil {
		panic(err)
	}
	return p
}

// SetProvider replaces the process-wide provider.
func SetProvider(p LoggerProvider) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalProvider = p
}

// GetProvider returns the process-wide provider.
func GetProvider() LoggerProvider {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider
}

// GetLogger returns the root logger of the process-wide provider.
func GetLogger() Logger {
	return GetProvider().GetLogger()
}

// GetLoggerWithName returns a logger tagged with ComponentKey=name.
func GetLoggerWithName(name string) Logger {
	return GetProvider().GetLoggerWithName(name)
}

// Setup builds a provider from cfg, installs it globally and routes
// pkg/errors warnings through it.
func Setup(cfg Config) (LoggerProvider, error) {
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	SetProvider(p)

	warnLogger := p.GetLoggerWithName("warnings")
	handler := func(w error) {
		warnLogger.Warn("bayesbench warning", ErrAttrKey, w)
	}
	bbErrors.SetWarningHandler(handler)
	if strings.EqualFold(cfg.Backend, BackendZerolog) {
		bbErrors.SetZerologWarnFunc(handler)
	} else {
		bbErrors.SetZerologWarnFunc(nil)
	}
	return p, nil
}

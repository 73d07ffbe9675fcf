package ecs

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel mirrors the five diagnostic levels spec SS6 requires the core to
// emit through a caller-supplied sink.
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Logger is the diagnostic sink the ECS emits records through. No component
// of the core performs I/O directly; every log call goes through this
// interface, supplied at WorldBuilder construction.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	Trace(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
}

// LoggerConfig configures the default logrus-backed Logger.
type LoggerConfig struct {
	Level      LogLevel
	Format     string // "json" or "text"
	Service    string
	AddCaller  bool
	TimeFormat string
}

// DefaultLoggerConfig returns sensible defaults for the ECS's own logger.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      LogLevelInfo,
		Format:     "text",
		Service:    "ecs",
		TimeFormat: time.RFC3339,
	}
}

// logrusLogger adapts *logrus.Entry to the Logger interface.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogger builds the default Logger implementation.
func NewLogger(cfg LoggerConfig) Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetReportCaller(cfg.AddCaller)

	switch cfg.Level {
	case LogLevelTrace:
		base.SetLevel(logrus.TraceLevel)
	case LogLevelDebug:
		base.SetLevel(logrus.DebugLevel)
	case LogLevelWarn:
		base.SetLevel(logrus.WarnLevel)
	case LogLevelError:
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	if cfg.Format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: cfg.TimeFormat})
	} else {
		base.SetFormatter(&logrus.TextFormatter{TimestampFormat: cfg.TimeFormat, FullTimestamp: true})
	}

	entry := logrus.NewEntry(base)
	if cfg.Service != "" {
		entry = entry.WithField("service", cfg.Service)
	}
	return &logrusLogger{entry: entry}
}

// NopLogger discards every record; useful in tests that don't want stderr
// noise.
func NopLogger() Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.PanicLevel + 1)
	return &logrusLogger{entry: logrus.NewEntry(base)}
}

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields map[string]any) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) Trace(args ...any) { l.entry.Trace(args...) }
func (l *logrusLogger) Debug(args ...any) { l.entry.Debug(args...) }
func (l *logrusLogger) Info(args ...any)  { l.entry.Info(args...) }
func (l *logrusLogger) Warn(args ...any)  { l.entry.Warn(args...) }
func (l *logrusLogger) Error(args ...any) { l.entry.Error(args...) }

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ConsoleLogger writes log messages to stderr through logrus.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	entry *logrus.Entry
}

// Option configures a ConsoleLogger.
type Option func(*logrus.Logger)

// WithOutput redirects output, mainly for tests.
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) { l.SetOutput(w) }
}

// WithJSON switches to one JSON object per line.
func WithJSON() Option {
	return func(l *logrus.Logger) { l.SetFormatter(&logrus.JSONFormatter{}) }
}

// WithLevel overrides the level chosen from the verbose flag.
func WithLevel(level logrus.Level) Option {
	return func(l *logrus.Logger) { l.SetLevel(level) }
}

// NewConsoleLogger creates a new ConsoleLogger.
// If verbose is true, Verbose() calls will produce output.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool, opts ...Option) *ConsoleLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	for _, opt := range opts {
		opt(l)
	}
	return &ConsoleLogger{entry: logrus.NewEntry(l)}
}

// FromLogrus wraps an existing logrus logger, e.g. one with a test hook.
func FromLogrus(l *logrus.Logger) *ConsoleLogger {
	return &ConsoleLogger{entry: logrus.NewEntry(l)}
}

// WithRunID returns a logger that tags every entry with the run id.
func (l *ConsoleLogger) WithRunID(id uuid.UUID) *ConsoleLogger {
	return &ConsoleLogger{entry: l.entry.WithField("run_id", id.String())}
}

// WithField returns a logger that tags every entry with key=value.
func (l *ConsoleLogger) WithField(key string, value interface{}) *ConsoleLogger {
	return &ConsoleLogger{entry: l.entry.WithField(key, value)}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Warn logs recoverable problems.
func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// ParseFormat validates a --log-format / UNIVLOAD_LOG_FORMAT value.
func ParseFormat(s string) (json bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, fmt.Errorf("unknown log format %q (want text or json)", s)
	}
}

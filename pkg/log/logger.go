package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Fields is a map of field names to values.
type Fields map[string]interface{}

// Context keys for propagating logging context
const (
	RequestIDKey = "request_id"
	ComponentKey = "component"
	OperationKey = "operation"
)

// Entry represents a single log entry.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
	Caller    string
}

// Logger defines the core logging interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Debugf(msg string, args ...interface{})
	Infof(msg string, args ...interface{})
	Warnf(msg string, args ...interface{})
	Errorf(msg string, args ...interface{})

	// With adds fields to every subsequent entry.
	With(fields ...Field) Logger

	// WithError attaches err under the "error" key.
	WithError(err error) Logger

	// WithContext picks up request scoped values from ctx.
	WithContext(ctx context.Context) Logger

	SetLevel(level Level)
	GetLevel() Level
}

// Formatter defines the interface for formatting log entries.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Output defines the interface for log outputs.
type Output interface {
	Write(entry *Entry, formattedEntry []byte) error
	Close() error
}

// LoggerOption configures a BaseLogger under construction.
type LoggerOption func(*BaseLogger)

// BaseLogger is the Logger implementation. Children created by With share the
// level and outputs of their parent.
type BaseLogger struct {
	level     *atomic.Int32
	formatter Formatter
	outputs   []Output
	slog      *slog.Logger
}

// ContextExtractor returns the request scoped logging values stored in ctx.
func ContextExtractor(ctx context.Context) Fields {
	fields := Fields{}
	if ctx == nil {
		return fields
	}
	for _, k := range []string{RequestIDKey, ComponentKey, OperationKey} {
		if v := ctx.Value(k); v != nil {
			fields[k] = v
		}
	}
	return fields
}

// NewLogger returns a JSON console logger at info level unless options say
// otherwise.
func NewLogger(options ...LoggerOption) Logger {
	return newBaseLogger(options...)
}

func newBaseLogger(options ...LoggerOption) *BaseLogger {
	l := &BaseLogger{level: new(atomic.Int32), formatter: &JSONFormatter{}}
	l.level.Store(int32(InfoLevel))
	for _, opt := range options {
		opt(l)
	}
	if len(l.outputs) == 0 {
		l.outputs = []Output{NewConsoleOutput()}
	}
	l.slog = slog.New(newSinkHandler(l))
	return l
}

func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.level.Store(int32(level)) }
}

func WithFormatter(formatter Formatter) LoggerOption {
	return func(l *BaseLogger) { l.formatter = formatter }
}

// WithOutput appends an output. Without any, the logger writes to stderr.
func WithOutput(output Output) LoggerOption {
	return func(l *BaseLogger) { l.outputs = append(l.outputs, output) }
}

func (l *BaseLogger) emit(level Level, msg string, fields []Field) {
	if level < l.GetLevel() {
		return
	}
	l.slog.LogAttrs(context.Background(), levelToSlog(level), msg, fieldAttrs(fields)...)
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.emit(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.emit(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.emit(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.emit(ErrorLevel, msg, fields) }

// Fatal logs and exits with status 1.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.emit(FatalLevel, msg, fields)
	os.Exit(1)
}

func (l *BaseLogger) Debugf(format string, args ...interface{}) {
	l.emit(DebugLevel, fmt.Sprintf(format, args...), nil)
}

func (l *BaseLogger) Infof(format string, args ...interface{}) {
	l.emit(InfoLevel, fmt.Sprintf(format, args...), nil)
}

func (l *BaseLogger) Warnf(format string, args ...interface{}) {
	l.emit(WarnLevel, fmt.Sprintf(format, args...), nil)
}

func (l *BaseLogger) Errorf(format string, args ...interface{}) {
	l.emit(ErrorLevel, fmt.Sprintf(format, args...), nil)
}

func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	child := *l
	child.slog = l.slog.With(fieldArgs(fields)...)
	return &child
}

func (l *BaseLogger) WithError(err error) Logger {
	return l.With(Err(err))
}

func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	return l.With(ContextExtractor(ctx).sorted()...)
}

// SetLevel changes the level for this logger and every child derived from it.
func (l *BaseLogger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *BaseLogger) GetLevel() Level {
	return Level(l.level.Load())
}

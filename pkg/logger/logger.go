package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultLogDir  = "~/.local/share/exiled-search/logs"
	DefaultLogFile = "debug.log"
)

// Logger wraps zerolog with key/value call sites:
//
//	log.Info("Search filled", "item", name, "filters", n)
type Logger struct {
	zlog    zerolog.Logger
	level   zerolog.Level
	file    *os.File
	writers []io.Writer
}

type Option func(*Logger) error

// WithConsole writes human-readable lines to stdout.
func WithConsole() Option {
	return WithWriter(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) error {
		l.level = level
		return nil
	}
}

// WithFile appends plain text lines to path, creating its directory.
func WithFile(path string) Option {
	return func(l *Logger) error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		return WithWriter(zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true})(l)
	}
}

func WithDefaultFile() Option {
	return func(l *Logger) error {
		path, err := DefaultLogPath()
		if err != nil {
			return err
		}
		return WithFile(path)(l)
	}
}

// WithWriter adds an arbitrary writer, e.g. the ui log panel.
func WithWriter(w io.Writer) Option {
	return func(l *Logger) error {
		l.writers = append(l.writers, w)
		return nil
	}
}

func DefaultLogPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(strings.Replace(DefaultLogDir, "~", homeDir, 1), DefaultLogFile), nil
}

// ParseLevel maps a configured level name to a zerolog level, falling back to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func NewLogger(opts ...Option) (*Logger, error) {
	l := &Logger{level: zerolog.InfoLevel}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, fmt.Errorf("failed to apply logger option: %w", err)
		}
	}

	var out io.Writer
	switch len(l.writers) {
	case 0:
		out = os.Stderr
	case 1:
		out = l.writers[0]
	default:
		out = zerolog.MultiLevelWriter(l.writers...)
	}

	l.zlog = zerolog.New(out).Level(l.level).With().Timestamp().Logger()
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), level: zerolog.Disabled}
}

// With returns a child logger that adds fields to every line. The child
// shares the parent's file, so only the parent should be closed.
func (l *Logger) With(fields ...interface{}) *Logger {
	ctx := l.zlog.With()
	eachField(fields, func(key string, value interface{}) {
		ctx = ctx.Interface(key, value)
	})
	return &Logger{zlog: ctx.Logger(), level: l.level}
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel changes the minimum level. Call it before the logger is shared
// with other goroutines.
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.zlog = l.zlog.Level(level)
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	emit(l.zlog.Debug(), msg, nil, fields)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	emit(l.zlog.Info(), msg, nil, fields)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	emit(l.zlog.Warn(), msg, nil, fields)
}

func (l *Logger) Error(msg string, err error, fields ...interface{}) {
	emit(l.zlog.Error(), msg, err, fields)
}

// emit must be called directly from a level method so the caller frame
// points at the log call site.
func emit(event *zerolog.Event, msg string, err error, fields []interface{}) {
	if event == nil {
		return
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		event = event.Str("file", filepath.Base(file)).Int("line", line)
	}
	if err != nil {
		event = event.Err(err)
	}
	eachField(fields, func(key string, value interface{}) {
		if e, ok := value.(error); ok {
			event = event.AnErr(key, e)
			return
		}
		event = event.Interface(key, value)
	})
	event.Msg(msg)
}

// eachField walks key/value pairs, skipping non-string keys and a dangling
// last key.
func eachField(fields []interface{}, fn func(string, interface{})) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		fn(key, fields[i+1])
	}
}

// Package logger is a small logrus wrapper with an optional console sink and
// a rotated JSON file sink.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file written inside Options.Dir.
const FileName = "anchor.log"

// Options describes logger construction parameters.
type Options struct {
	// Dir enables the rotated JSON file sink when non-empty.
	Dir   string
	Level string
	// Console receives coloured text output. Nil disables the console sink,
	// which the full-screen console needs.
	Console io.Writer
}

type Logger struct {
	console *logrus.Logger
	file    *logrus.Logger
	closer  io.Closer
}

var (
	mu            sync.RWMutex
	defaultLogger = discard()
)

func discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{console: l}
}

// ParseLevel maps a config level to a logrus level. Unknown values fall back
// to info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// New builds a logger from opts.
func New(opts Options) (*Logger, error) {
	level := ParseLevel(opts.Level)
	out := &Logger{}

	if opts.Console != nil {
		c := logrus.New()
		c.SetFormatter(&logrus.TextFormatter{
			ForceColors:   isTerminal(opts.Console),
			FullTimestamp: true,
		})
		c.SetOutput(opts.Console)
		c.SetLevel(level)
		out.console = c
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, FileName),
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		f := logrus.New()
		f.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
		f.SetOutput(rotated)
		f.SetLevel(level)
		out.file = f
		out.closer = rotated
	}
	return out, nil
}

// Setup builds a logger from opts and installs it as the package default.
func Setup(opts Options) error {
	l, err := New(opts)
	if err != nil {
		return err
	}
	mu.Lock()
	prev := defaultLogger
	defaultLogger = l
	mu.Unlock()
	_ = prev.Close()
	return nil
}

// Close flushes and closes the file sink of the package default.
func Close() error {
	mu.Lock()
	prev := defaultLogger
	defaultLogger = discard()
	mu.Unlock()
	return prev.Close()
}

func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) each(fn func(*logrus.Logger)) {
	if l.console != nil {
		fn(l.console)
	}
	if l.file != nil {
		fn(l.file)
	}
}

// WithFields logs a structured entry at level on every sink.
func (l *Logger) WithFields(level logrus.Level, fields logrus.Fields, msg string) {
	l.each(func(lg *logrus.Logger) { lg.WithFields(fields).Log(level, msg) })
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func Infof(format string, args ...any) {
	current().each(func(l *logrus.Logger) { l.Infof(format, args...) })
}

func Warnf(format string, args ...any) {
	current().each(func(l *logrus.Logger) { l.Warnf(format, args...) })
}

func Errorf(format string, args ...any) {
	current().each(func(l *logrus.Logger) { l.Errorf(format, args...) })
}

func Debugf(format string, args ...any) {
	current().each(func(l *logrus.Logger) { l.Debugf(format, args...) })
}

// Fatalf logs to every sink and exits.
func Fatalf(format string, args ...any) {
	l := current()
	if l.file != nil {
		l.file.Errorf(format, args...)
	}
	_ = l.Close()
	if l.console != nil {
		l.console.Fatalf(format, args...)
	}
	os.Exit(1)
}

// Event logs msg with structured fields at info level.
func Event(msg string, fields map[string]any) {
	current().WithFields(logrus.InfoLevel, logrus.Fields(fields), msg)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

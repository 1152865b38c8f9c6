// Package logging provides leveled, fielded logging for Work-Flow-zen.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Logger writes timestamped, leveled lines with optional key=value fields
type Logger struct {
	level  Level
	output io.Writer
	fields map[string]any
	mu     *sync.Mutex
}

var defaultLogger = &Logger{
	level:  INFO,
	output: os.Stdout,
	fields: map[string]any{},
	mu:     &sync.Mutex{},
}

// SetLevel sets the global log level
func SetLevel(level Level) { defaultLogger.level = level }

// SetOutput sets the global output writer
func SetOutput(w io.Writer) { defaultLogger.output = w }

// WithField returns a logger carrying an extra field
func WithField(key string, value any) *Logger { return defaultLogger.WithField(key, value) }

// WithField returns a copy of the logger carrying an extra field
func (l *Logger) WithField(key string, value any) *Logger {
	fields := make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{level: l.level, output: l.output, fields: fields, mu: l.mu}
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05Z07:00"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.output, b.String())
}

// Debug logs at DEBUG level
func (l *Logger) Debug(msg string, args ...any) { l.log(DEBUG, msg, args...) }

// Info logs at INFO level
func (l *Logger) Info(msg string, args ...any) { l.log(INFO, msg, args...) }

// Warn logs at WARN level
func (l *Logger) Warn(msg string, args ...any) { l.log(WARN, msg, args...) }

// Error logs at ERROR level
func (l *Logger) Error(msg string, args ...any) { l.log(ERROR, msg, args...) }

// Package-level helpers on the default logger

func Debug(msg string, args ...any) { defaultLogger.log(DEBUG, msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.log(INFO, msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.log(WARN, msg, args...) }
func Error(msg string, args ...any) { defaultLogger.log(ERROR, msg, args...) }

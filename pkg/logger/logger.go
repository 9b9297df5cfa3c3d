package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Leveled logger shared by the API server and the command-line tools.
// Init(level) picks the minimum level, SetFormat switches between text and JSON records.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// slog has no fatal level; it sits above error.
const slogFatal = slog.Level(12)

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stdout
	format           = "text"
	level            = LevelInfo
	base             = newSlog(out, format)
)

func newSlog(w io.Writer, f string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lv, ok := a.Value.Any().(slog.Level); ok && lv == slogFatal {
					return slog.String(slog.LevelKey, "FATAL")
				}
			}
			return a
		},
	}
	if f == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = LevelDebug
	case "warn", "warning":
		level = LevelWarn
	case "error":
		level = LevelError
	case "fatal":
		level = LevelFatal
	default:
		level = LevelInfo
	}
}

// SetFormat selects "json" or "text" output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	format = "text"
	if strings.EqualFold(strings.TrimSpace(f), "json") {
		format = "json"
	}
	base = newSlog(out, format)
}

// SetOutput redirects all records to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	base = newSlog(out, format)
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func emit(l Level, sl slog.Level, msg string, attrs ...any) {
	if !shouldLog(l) {
		return
	}
	mu.RLock()
	lg := base
	mu.RUnlock()
	lg.Log(context.Background(), sl, msg, attrs...)
}

func Debugf(format string, v ...interface{}) { emit(LevelDebug, slog.LevelDebug, fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { emit(LevelInfo, slog.LevelInfo, fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { emit(LevelWarn, slog.LevelWarn, fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { emit(LevelError, slog.LevelError, fmt.Sprintf(format, v...)) }

func Fatalf(format string, v ...interface{}) {
	mu.RLock()
	lg := base
	mu.RUnlock()
	lg.Log(context.Background(), slogFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// With logs structured key/value pairs at info level, e.g. With("request approved", "email", e).
func With(msg string, kv ...any) { emit(LevelInfo, slog.LevelInfo, msg, kv...) }

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}

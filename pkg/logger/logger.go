// Package logger provides component-scoped structured logging for picobridge.
//
// Every entry carries a "component" field so bridge, state and gateway
// output can be filtered independently. The backend is zerolog; callers only
// see the small C/CF helper set.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "debug",
	INFO:  "info",
	WARN:  "warn",
	ERROR: "error",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

// ParseLevel maps a config string to a LogLevel. Unknown values yield INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

var (
	mu     sync.RWMutex
	level            = INFO
	output io.Writer = os.Stderr
	base             = newBase(os.Stderr)
)

func newBase(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel changes the minimum level that is emitted.
func SetLevel(l LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current minimum level.
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetOutput redirects log output. Used by tests and by the console format.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newBase(w)
}

// SetFormat selects "json" (default) or "console" output on the current writer.
func SetFormat(format string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.EqualFold(format, "console") {
		base = newBase(zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339})
		return
	}
	base = newBase(output)
}

func logf(l LogLevel, component, message string, fields map[string]any) {
	mu.RLock()
	if l < level {
		mu.RUnlock()
		return
	}
	lg := base
	mu.RUnlock()

	var ev *zerolog.Event
	switch l {
	case DEBUG:
		ev = lg.Debug()
	case WARN:
		ev = lg.Warn()
	case ERROR:
		ev = lg.Error()
	default:
		ev = lg.Info()
	}
	if component != "" {
		ev = ev.Str("component", component)
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(message)
}

func DebugC(component, message string) { logf(DEBUG, component, message, nil) }

func DebugCF(component, message string, fields map[string]any) {
	logf(DEBUG, component, message, fields)
}

func InfoC(component, message string) { logf(INFO, component, message, nil) }

func InfoCF(component, message string, fields map[string]any) {
	logf(INFO, component, message, fields)
}

func WarnC(component, message string) { logf(WARN, component, message, nil) }

func WarnCF(component, message string, fields map[string]any) {
	logf(WARN, component, message, fields)
}

func ErrorC(component, message string) { logf(ERROR, component, message, nil) }

func ErrorCF(component, message string, fields map[string]any) {
	logf(ERROR, component, message, fields)
}

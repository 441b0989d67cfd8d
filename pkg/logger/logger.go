package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Minimal leveled logger shared by the status service and statusctl.
// Lines look like: 2024-01-02T15:04:05Z [INFO] message

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
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

// ParseLevel maps a case-insensitive name to a Level. Unknown names map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	}
	return LevelInfo
}

var (
	mu     sync.RWMutex
	logger = log.New(os.Stdout, "", 0)
	level  = LevelInfo
	exit   = os.Exit
)

// Init sets the global log level (debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// SetOutput redirects all log lines to w; nil restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return level.String()
}

func enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func output(l Level, format string, v ...interface{}) {
	mu.RLock()
	out := logger
	mu.RUnlock()
	out.Printf("%s [%s] %s", time.Now().UTC().Format(time.RFC3339), strings.ToUpper(l.String()), fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		output(LevelDebug, format, v...)
	}
}

func Infof(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		output(LevelInfo, format, v...)
	}
}

func Warnf(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		output(LevelWarn, format, v...)
	}
}

func Errorf(format string, v ...interface{}) {
	if enabled(LevelError) {
		output(LevelError, format, v...)
	}
}

// Fatalf always logs, then exits the process with status 1.
func Fatalf(format string, v ...interface{}) {
	output(LevelFatal, format, v...)
	exit(1)
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

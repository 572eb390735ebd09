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

// Small leveled logger shared by the gateway. Level comes from LOG_LEVEL
// (debug|info|warn|error); anything else means info.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu  sync.RWMutex
	out = log.New(os.Stdout, "", 0)
	min = LevelInfo
)

func parse(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// Init sets the global level. Call once during startup.
func Init(level string) {
	mu.Lock()
	min = parse(level)
	mu.Unlock()
}

// SetOutput redirects log output (used by tests).
func SetOutput(w io.Writer) {
	mu.Lock()
	out = log.New(w, "", 0)
	mu.Unlock()
}

// LevelString reports the active level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch min {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "info"
}

func emit(l Level, tag, format string, v ...interface{}) {
	mu.RLock()
	enabled := l >= min
	w := out
	mu.RUnlock()
	if !enabled {
		return
	}
	w.Printf(time.Now().Format(time.RFC3339)+" ["+tag+"] "+format, v...)
}

func Debugf(format string, v ...interface{}) { emit(LevelDebug, "DEBUG", format, v...) }
func Infof(format string, v ...interface{})  { emit(LevelInfo, "INFO", format, v...) }
func Warnf(format string, v ...interface{})  { emit(LevelWarn, "WARN", format, v...) }
func Errorf(format string, v ...interface{}) { emit(LevelError, "ERROR", format, v...) }

// Fatalf logs at error level and exits the process.
func Fatalf(format string, v ...interface{}) {
	mu.RLock()
	w := out
	mu.RUnlock()
	w.Printf("%s", time.Now().Format(time.RFC3339)+" [FATAL] "+fmt.Sprintf(format, v...))
	os.Exit(1)
}

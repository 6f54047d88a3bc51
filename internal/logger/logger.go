package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	log     = zerolog.Nop()
	logFile *os.File
)

// InitLogging sets up logging at the given level. Output goes to logPath when
// set, otherwise to a console writer on stderr.
func InitLogging(level, logPath string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	var f *os.File

	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err = os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		out = f
	}

	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	logFile = f
	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()

	return nil
}

// SetOutput replaces the logger with one writing JSON lines to w.
func SetOutput(w io.Writer, level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()

	log = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Close closes the log file if open.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	log = zerolog.Nop()
}

// L returns the current logger for structured events.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	l := log

	return &l
}

func Infof(format string, v ...interface{}) {
	L().Info().Msgf(format, v...)
}

// Errorf logs at error level.
func Errorf(format string, v ...interface{}) {
	L().Error().Msgf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	L().Debug().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	L().Warn().Msgf(format, v...)
}

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

const maxLogSize = 5 * 1024 * 1024

var (
	mu      sync.Mutex
	log     = logrus.New()
	logFile *os.File
)

func init() {
	log.SetOutput(io.Discard)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// Init points the logger at ~/.config/marlin/marlin.log, rotating the
// file once it grows past maxLogSize. Stdout stays clean for the TUI.
func Init() error {
	mu.Lock()
	defer mu.Unlock()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot get home directory: %w", err)
	}
	logDir := filepath.Join(homeDir, ".config", "marlin")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("cannot create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "marlin.log")
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		old := logPath + ".old"
		os.Remove(old)
		os.Rename(logPath, old)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}
	logFile = f
	log.SetOutput(f)
	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
		log.SetOutput(io.Discard)
	}
}

// Disable silences logging (useful for tests).
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(io.Discard)
}

func Debugf(format string, args ...any) { log.Debugf(format, args...) }
func Infof(format string, args ...any)  { log.Infof(format, args...) }
func Warnf(format string, args ...any)  { log.Warnf(format, args...) }
func Errorf(format string, args ...any) { log.Errorf(format, args...) }

// WithField returns an entry carrying one structured field.
func WithField(key string, value any) *logrus.Entry {
	return log.WithField(key, value)
}

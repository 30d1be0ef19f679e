package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DebugEnabled gates the file log. The console helpers in console.go are
// always on; the file log only exists when the debug flag is set.
var DebugEnabled = false

var (
	fileLog *log.Logger
	logFile *os.File
)

// InitLogging opens the run log, usually next to the download root. With
// debug off no file is created and the leveled helpers become no-ops.
func InitLogging(debugMode bool, logPath string) error {
	DebugEnabled = debugMode

	if !DebugEnabled || logPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	fileLog = log.New(f, "courseget ", log.Ldate|log.Ltime)

	return nil
}

// Close closes the log file if open.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
		fileLog = nil
	}
}

func logf(level, format string, v ...interface{}) {
	if fileLog != nil {
		fileLog.Printf("["+level+"] "+format, v...)
	}
}

// Infof logs an informational message to the run log.
func Infof(format string, v ...interface{}) { logf("INFO", format, v...) }

// Errorf logs an error to the run log.
func Errorf(format string, v ...interface{}) { logf("ERROR", format, v...) }

func Debugf(format string, v ...interface{}) { logf("DEBUG", format, v...) }

func Warnf(format string, v ...interface{}) { logf("WARNING", format, v...) }

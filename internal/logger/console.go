package logger

import (
	"strings"

	"github.com/fatih/color"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	headerColor  = color.New(color.FgMagenta)
)

// Info prints an informational message to the console.
func Info(format string, v ...interface{}) {
	infoColor.Printf("ℹ "+format+"\n", v...)
	Infof(format, v...)
}

// Success prints a success message to the console.
func Success(format string, v ...interface{}) {
	successColor.Printf("✓ "+format+"\n", v...)
	Infof(format, v...)
}

// Warn prints a warning to the console.
func Warn(format string, v ...interface{}) {
	warnColor.Printf("⚠ "+format+"\n", v...)
	Warnf(format, v...)
}

// Error prints an error to the console.
func Error(format string, v ...interface{}) {
	errorColor.Printf("✗ "+format+"\n", v...)
	Errorf(format, v...)
}

// Header prints a banner separating major phases of a run.
func Header(msg string) {
	line := strings.Repeat("=", 60)
	headerColor.Println(line)
	headerColor.Println(msg)
	headerColor.Println(line)
}

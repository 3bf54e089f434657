// Package logger prints leveled, colored log lines for the services.
package logger

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/fatih/color"
)

var (
	verbose atomic.Bool

	std = log.New(os.Stderr, "", log.Ldate|log.Ltime)

	debugTag = color.New(color.FgCyan).SprintFunc()
	infoTag  = color.New(color.FgGreen).SprintFunc()
	warnTag  = color.New(color.FgYellow).SprintFunc()
	errorTag = color.New(color.FgRed, color.Bold).SprintFunc()
)

// SetVerbose toggles Debug output.
func SetVerbose(v bool) {
	verbose.Store(v)
}

func Debug(format string, args ...any) {
	if !verbose.Load() {
		return
	}
	std.Printf("%s %s", debugTag("[DEBUG]"), fmt.Sprintf(format, args...))
}

func Info(format string, args ...any) {
	std.Printf("%s %s", infoTag("[INFO]"), fmt.Sprintf(format, args...))
}

func Warn(format string, args ...any) {
	std.Printf("%s %s", warnTag("[WARN]"), fmt.Sprintf(format, args...))
}

func Error(format string, args ...any) {
	std.Printf("%s %s", errorTag("[ERROR]"), fmt.Sprintf(format, args...))
}

// Fatal logs and exits the process.
func Fatal(format string, args ...any) {
	std.Fatalf("%s %s", errorTag("[FATAL]"), fmt.Sprintf(format, args...))
}

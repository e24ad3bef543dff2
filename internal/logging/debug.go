package logging

import (
	"fmt"
	"os"
	"strings"
)

// DebugEnabled returns true if debug mode is enabled via WT_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("WT_DEBUG") != ""
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if !DebugEnabled() {
		return
	}
	if Logger != nil {
		Logger.Debug(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if !DebugEnabled() {
		return
	}
	if Logger != nil {
		Logger.Debug(strings.TrimRight(fmt.Sprintln(args...), "\n"))
		return
	}
	fmt.Fprintln(os.Stderr, args...)
}

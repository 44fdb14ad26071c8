// Package rlog is a minimal wrapper around an io.Writer, adapted from the
// teacher's own log package: the collector, resolver, and CLI don't need
// structured/leveled logging, just a place to put debug and warning lines.
package rlog

import (
	"fmt"
	"io"
	"os"
)

// Logger writes tagged lines to an underlying io.Writer.
type Logger struct {
	io.Writer
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{Writer: w}
}

// Discard is a Logger that drops everything written to it.
var Discard = New(discardWriter{})

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Logln logs a line.
func (l *Logger) Logln(args ...interface{}) {
	fmt.Fprintln(l, args...)
}

// Logf logs a formatted line.
func (l *Logger) Logf(format string, args ...interface{}) {
	fmt.Fprintf(l, format, args...)
}

// Debugf logs a formatted line prefixed with "resolve: debug: ".
func (l *Logger) Debugf(format string, args ...interface{}) {
	fmt.Fprintf(l, "resolve: debug: "+format+"\n", args...)
}

// Warnf logs a formatted line prefixed with "resolve: warning: ".
func (l *Logger) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(l, "resolve: warning: "+format+"\n", args...)
}

// Default returns a Logger writing to stderr.
func Default() *Logger { return New(os.Stderr) }

// Package output fans progress lines and server messages out to the places a
// test run reports to: a debug trace, the console, and the test case that is
// currently running.
package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type (
	// TestLogger is the reporting sink of a running test case. *testing.T and
	// *testing.B satisfy it.
	TestLogger interface {
		Log(args ...any)
	}

	// Writer forwards every line it receives to slog at debug level, to the
	// console writer and, when one is bound, to the current TestLogger.
	//
	// The zero value is not usable; create writers with New. A nil *Writer
	// discards everything, which keeps call sites free of nil checks.
	Writer struct {
		mu      sync.Mutex
		console io.Writer
		logger  TestLogger
		debug   *slog.Logger
	}

	// Option customizes a Writer.
	Option func(*Writer)
)

// WithConsole sets the console stream. Passing nil disables console output.
func WithConsole(w io.Writer) Option {
	return func(o *Writer) {
		o.console = w
	}
}

// WithTestLogger binds the initial test-case sink.
func WithTestLogger(l TestLogger) Option {
	return func(o *Writer) {
		o.logger = l
	}
}

// WithDebugLogger replaces the slog logger used for the debug trace.
func WithDebugLogger(l *slog.Logger) Option {
	return func(o *Writer) {
		o.debug = l
	}
}

// New creates a Writer printing to stdout and tracing through slog.Default().
//
// Example:
//
//	out := output.New(output.WithTestLogger(t))
//	out.Printf("Executing sql file %s", path)
func New(opts ...Option) *Writer {
	w := &Writer{
		console: os.Stdout,
		debug:   slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// SetTestLogger binds l as the sink for the test case that is now running and
// returns the previously bound sink so callers can restore it.
func (w *Writer) SetTestLogger(l TestLogger) TestLogger {
	if w == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.logger
	w.logger = l
	return prev
}

// Println writes a single line to every sink.
func (w *Writer) Println(line string) {
	if w == nil {
		return
	}

	line = strings.TrimRight(line, "\r\n")

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debug != nil {
		w.debug.Debug(line)
	}

	if w.console != nil {
		_, _ = fmt.Fprintln(w.console, line)
	}

	if w.logger != nil {
		w.logger.Log(line)
	}
}

// Printf formats according to a format specifier and writes the line to every sink.
func (w *Writer) Printf(format string, args ...any) {
	w.Println(fmt.Sprintf(format, args...))
}

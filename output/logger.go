// Package output provides verbosity-gated progress reporting for engine
// front-ends (the CLI, and anything else that drives resolver/modcache/walker
// directly). It does not participate in the symbol-table model itself.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// VerbosityLevel controls how much a Logger prints.
type VerbosityLevel int

const (
	// VerbosityQuiet suppresses everything except warnings and errors.
	VerbosityQuiet VerbosityLevel = iota
	// VerbosityDefault prints progress headlines only.
	VerbosityDefault
	// VerbosityVerbose additionally prints per-module statistics.
	VerbosityVerbose
	// VerbosityDebug additionally prints timestamped diagnostic traces.
	VerbosityDebug
)

// Logger provides structured, verbosity-gated logging for module-registry
// construction and import resolution. Output goes to stderr so stdout stays
// free for the symbol table a caller asked to print.
type Logger struct {
	verbosity    VerbosityLevel
	writer       io.Writer
	startTime    time.Time
	timings      map[string]time.Duration
	isTTY        bool
	progressBar  *progressbar.ProgressBar
	showProgress bool
}

// NewLogger creates a logger at the given verbosity, writing to stderr.
func NewLogger(verbosity VerbosityLevel) *Logger {
	return NewLoggerWithWriter(verbosity, os.Stderr)
}

// NewLoggerWithWriter creates a logger with a custom writer. Primarily used
// by tests that want to capture output.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	isTTY := IsTTY(w)
	return &Logger{
		verbosity:    verbosity,
		writer:       w,
		startTime:    time.Now(),
		timings:      make(map[string]time.Duration),
		isTTY:        isTTY,
		showProgress: isTTY,
	}
}

// Progress logs a high-level step, e.g. "resolving myapp.utils...".
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDefault {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Statistic logs counts and metrics, e.g. "module registry: 412 files".
func (l *Logger) Statistic(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs fine-grained diagnostics with an elapsed-time prefix.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		elapsed := time.Since(l.startTime)
		fmt.Fprintf(l.writer, "[%s] %s\n", formatDuration(elapsed), fmt.Sprintf(format, args...))
	}
}

// Warning always prints, regardless of verbosity.
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "warning: %s\n", fmt.Sprintf(format, args...))
}

// Error always prints, regardless of verbosity.
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "error: %s\n", fmt.Sprintf(format, args...))
}

// StartTiming begins timing a named phase (e.g. "registry", "walk", "mro").
// The returned func must be called to record the duration.
func (l *Logger) StartTiming(name string) func() {
	start := time.Now()
	return func() {
		l.timings[name] = time.Since(start)
	}
}

// GetTiming returns the recorded duration for a named phase.
func (l *Logger) GetTiming(name string) time.Duration {
	return l.timings[name]
}

// PrintTimingSummary prints all recorded timings (verbose mode only).
func (l *Logger) PrintTimingSummary() {
	if l.verbosity < VerbosityVerbose {
		return
	}
	fmt.Fprintln(l.writer, "\ntiming summary:")
	for name, duration := range l.timings {
		fmt.Fprintf(l.writer, "  %s: %s\n", name, duration.Round(time.Millisecond))
	}
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

// Verbosity returns the configured verbosity level.
func (l *Logger) Verbosity() VerbosityLevel { return l.verbosity }

// IsVerbose reports whether verbose or debug output is enabled.
func (l *Logger) IsVerbose() bool { return l.verbosity >= VerbosityVerbose }

// IsDebug reports whether debug output is enabled.
func (l *Logger) IsDebug() bool { return l.verbosity >= VerbosityDebug }

// IsTTY reports whether the logger's writer is a terminal.
func (l *Logger) IsTTY() bool { return l.isTTY }

// GetWriter returns the underlying writer.
func (l *Logger) GetWriter() io.Writer { return l.writer }

// StartProgress begins a progress bar (or spinner, when total < 0) for a
// long-running directory walk such as module-registry construction. In a
// non-TTY it degrades to a single progress line.
func (l *Logger) StartProgress(description string, total int) {
	if !l.showProgress || !l.isTTY {
		l.Progress("%s...", description)
		return
	}
	if l.progressBar != nil {
		_ = l.progressBar.Finish()
	}
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(l.writer),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65 * time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(l.writer) }),
	}
	if total < 0 {
		opts = append(opts, progressbar.OptionSpinnerType(14))
	} else {
		opts = append(opts, progressbar.OptionShowCount(), progressbar.OptionSetRenderBlankState(true))
	}
	l.progressBar = progressbar.NewOptions(total, opts...)
}

// UpdateProgress advances the active progress bar by delta.
func (l *Logger) UpdateProgress(delta int) {
	if !l.showProgress || !l.isTTY || l.progressBar == nil {
		return
	}
	_ = l.progressBar.Add(delta)
}

// FinishProgress completes and clears the active progress bar.
func (l *Logger) FinishProgress() {
	if !l.showProgress || !l.isTTY || l.progressBar == nil {
		return
	}
	_ = l.progressBar.Finish()
	l.progressBar = nil
}

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Logger is the logging interface used throughout gitpile. Internal methods
// (Info, Warning, Error) feed the debug log; the *ToUser methods, Success and
// StatusMessage are what the operator actually sees on the terminal.
type Logger interface {
	// Info logs an informational message to the debug log only.
	Info(format string, args ...interface{})

	// Warning logs a warning to the debug log; shown on the terminal
	// only in verbose mode.
	Warning(format string, args ...interface{})

	// Error logs an error to the debug log and always to stderr.
	Error(format string, args ...interface{})

	// InfoToUser prints an informational message to stdout and the debug log.
	InfoToUser(format string, args ...interface{})

	// WarningToUser prints a warning to stdout and the debug log,
	// regardless of verbosity. Baseline drift and other advisory
	// conditions go through here.
	WarningToUser(format string, args ...interface{})

	// Success prints a completion message to stdout and the debug log.
	Success(format string, args ...interface{})

	// StatusMessage prints raw status text to stdout without logging it.
	StatusMessage(format string, args ...interface{})

	// Close flushes and closes the debug log file, if one is open.
	Close() error
}

// DefaultLogger implements Logger on top of log/slog.
type DefaultLogger struct {
	mu      sync.Mutex
	slogger *slog.Logger
	enabled bool
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File
}

// New creates a Logger writing user output to stdout/stderr. When debug is
// true, structured logs are appended to logFile.
func New(debug bool, logFile string, verbose bool) Logger {
	return NewWithOutput(debug, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers.
func NewWithOutput(debug bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	l := &DefaultLogger{
		enabled: debug,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if debug {
		if dir := filepath.Dir(logFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				_, _ = fmt.Fprintf(stderr, "warning: cannot create log directory: %v\n", err)
			}
		}
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "warning: cannot open log file: %v, logging to stderr\n", err)
			l.slogger = slog.New(slog.NewTextHandler(stderr, opts))
		} else {
			l.file = f
			l.slogger = slog.New(slog.NewTextHandler(f, opts))
			l.slogger.Info("gitpile debug logging started")
		}
	} else {
		l.slogger = slog.New(slog.NewTextHandler(stderr, opts))
	}

	return l
}

// Info logs an informational message (debug log only).
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.slogger.Info(fmt.Sprintf(format, args...))
}

// Warning logs a warning; surfaced on the terminal only in verbose mode.
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Warn(msg)
	}
	if l.verbose {
		_, _ = fmt.Fprintf(l.stderr, "warning: %s\n", msg)
	}
}

// Error logs an error and always shows it on stderr.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Error(msg)
	}
	_, _ = fmt.Fprintf(l.stderr, "error: %s\n", msg)
}

// InfoToUser prints an informational message to stdout and the debug log.
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Info(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "%s\n", msg)
}

// WarningToUser prints a warning to stdout regardless of verbosity.
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Warn(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "warning: %s\n", msg)
}

// Success prints a completion message to stdout.
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.slogger.Info(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "%s\n", msg)
}

// StatusMessage prints raw status text to stdout only.
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintf(l.stdout, format+"\n", args...)
}

// Close flushes and closes the debug log file.
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if err := l.file.Sync(); err != nil {
			return err
		}
		return l.file.Close()
	}
	return nil
}

package logging

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger
	quiet bool
}

// New creates a Logger writing to stdout/stderr.
func New() *Logger {
	return &Logger{
		info:  log.New(os.Stdout, "", 0),
		warn:  log.New(os.Stdout, "", 0),
		err:   log.New(os.Stderr, "", 0),
		debug: log.New(os.Stdout, "", 0),
	}
}

// NewQuiet creates a Logger that discards everything. Used in tests.
func NewQuiet() *Logger {
	l := New()
	l.quiet = true
	return l
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	if l.quiet {
		return
	}
	l.info.Printf(fmt.Sprintf("[%s] INFO  %s", l.timestamp(), format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	if l.quiet {
		return
	}
	l.warn.Printf(fmt.Sprintf("[%s] WARN  %s", l.timestamp(), format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	if l.quiet {
		return
	}
	l.err.Printf(fmt.Sprintf("[%s] ERROR %s", l.timestamp(), format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if l.quiet {
		return
	}
	l.debug.Printf(fmt.Sprintf("[%s] DEBUG %s", l.timestamp(), format), args...)
}

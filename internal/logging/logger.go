// Package logging provides the leveled, timestamped log sink used for run
// progress. INFO lines can be silenced; IMPORTANT and ERROR lines cannot.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Level is the severity of a log line
type Level = log.Level

const (
	// LevelInfo is routine progress, hidden in quiet mode
	LevelInfo = log.InfoLevel
	// LevelImportant is always shown (run start, summaries)
	LevelImportant = log.WarnLevel
	// LevelError is always shown
	LevelError = log.ErrorLevel
)

// TimeFormat is the ISO-8601 timestamp prefixed to every line
const TimeFormat = time.RFC3339

// Logger writes leveled lines with an ISO-8601 timestamp prefix
type Logger struct {
	l *log.Logger
}

// Options configures a Logger
type Options struct {
	Quiet  bool   // Suppress INFO lines
	Prefix string // Optional prefix shown after the level
}

// New creates a Logger writing to w
func New(w io.Writer, opts Options) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Prefix:          opts.Prefix,
		Level:           LevelInfo,
	})
	l.SetStyles(styles())
	if opts.Quiet {
		l.SetLevel(LevelImportant)
	}
	return &Logger{l: l}
}

// Default returns a Logger writing to stderr
func Default(quiet bool) *Logger {
	return New(os.Stderr, Options{Quiet: quiet})
}

// Discard returns a Logger that drops everything
func Discard() *Logger {
	return New(io.Discard, Options{})
}

// styles relabels the warn level as IMPORTANT and drops the
// default four-character truncation
func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels[LevelInfo] = lipgloss.NewStyle().
		SetString("INFO").
		Bold(true).
		Foreground(lipgloss.Color("86"))
	s.Levels[LevelImportant] = lipgloss.NewStyle().
		SetString("IMPORTANT").
		Bold(true).
		Foreground(lipgloss.Color("192"))
	s.Levels[LevelError] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("204"))
	return s
}

// Log writes msg at the given level with optional key/value pairs
func (lg *Logger) Log(level Level, msg string, keyvals ...interface{}) {
	lg.l.Log(level, msg, keyvals...)
}

// Info logs routine progress
func (lg *Logger) Info(msg string, keyvals ...interface{}) {
	lg.l.Log(LevelInfo, msg, keyvals...)
}

// Important logs lines that must survive quiet mode
func (lg *Logger) Important(msg string, keyvals ...interface{}) {
	lg.l.Log(LevelImportant, msg, keyvals...)
}

// Error logs failures
func (lg *Logger) Error(msg string, keyvals ...interface{}) {
	lg.l.Log(LevelError, msg, keyvals...)
}

// With returns a Logger that adds keyvals to every line
func (lg *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{l: lg.l.With(keyvals...)}
}

// Quiet reports whether INFO lines are suppressed
func (lg *Logger) Quiet() bool {
	return lg.l.GetLevel() > LevelInfo
}

// Package logging builds the diagnostic logger shared by the library and CLI.
// Diagnostics go to stderr through zap's console encoder; user-facing results
// are printed separately by the caller.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level selects how much diagnostic output is produced.
type Level int

// Log levels, from least to most output.
const (
	LevelQuiet   Level = iota // errors only
	LevelNormal               // info and above
	LevelVerbose              // everything, including per-file progress
)

// New returns a sugared logger writing human-readable lines to w.
func New(w io.Writer, level Level) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.NameKey = ""
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.ConsoleSeparator = ": "

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zapLevel(level),
	)
	return zap.New(core).Sugar()
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// LevelFor maps the CLI's quiet/verbose switches to a Level.
// Verbose wins when both are set.
func LevelFor(quiet, verbose bool) Level {
	switch {
	case verbose:
		return LevelVerbose
	case quiet:
		return LevelQuiet
	default:
		return LevelNormal
	}
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelQuiet:
		return zapcore.ErrorLevel
	case LevelVerbose:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// LineWriter adapts a logging function to io.Writer, emitting one entry per
// non-blank line. Used to forward external tool output into the log.
type LineWriter struct {
	Log    func(args ...any)
	Prefix string

	pending []byte
}

// Write buffers partial lines until a newline arrives.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.pending = append(w.pending, p...)
	for {
		i := indexNewline(w.pending)
		if i < 0 {
			break
		}
		w.emit(w.pending[:i])
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *LineWriter) Flush() {
	if len(w.pending) > 0 {
		w.emit(w.pending)
		w.pending = nil
	}
}

func (w *LineWriter) emit(line []byte) {
	s := string(trimCR(line))
	if isBlank(s) || w.Log == nil {
		return
	}
	w.Log(w.Prefix + s)
}

func indexNewline(b []byte) int {
	for i, c := range b {
		if c == '\n' {
			return i
		}
	}
	return -1
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

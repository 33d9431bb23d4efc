package logger

import (
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is a leveled logfmt logger. Every call takes a message followed by
// alternating keys and values.
type Logger struct {
	base log.Logger
}

// NewLogger returns a Logger writing to stderr, filtered at the given level.
func NewLogger(lvl string) *Logger {
	return New(os.Stderr, lvl)
}

func New(w io.Writer, lvl string) *Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = level.NewFilter(l, levelOption(lvl))
	l = log.With(l, "ts", log.DefaultTimestampUTC)
	return &Logger{base: l}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{base: log.NewNopLogger()}
}

func levelOption(lvl string) level.Option {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// With returns a child Logger carrying the given key/value pairs.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{base: log.With(l.base, keyvals...)}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	_ = level.Debug(l.base).Log(withMsg(msg, keyvals)...)
}

func (l *Logger) Info(msg string, keyvals ...interface{}) {
	_ = level.Info(l.base).Log(withMsg(msg, keyvals)...)
}

func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	_ = level.Warn(l.base).Log(withMsg(msg, keyvals)...)
}

func (l *Logger) Error(msg string, keyvals ...interface{}) {
	_ = level.Error(l.base).Log(withMsg(msg, keyvals)...)
}

func withMsg(msg string, keyvals []interface{}) []interface{} {
	out := make([]interface{}, 0, len(keyvals)+2)
	out = append(out, "msg", msg)
	return append(out, keyvals...)
}

// Package observability adapts zerolog and Prometheus to the store's
// logging and metrics interfaces.
package observability

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements core.Logger on top of a zerolog.Logger.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a timestamped logger writing to w. Development
// mode uses the human-readable console writer; otherwise JSON lines are written.
func NewZerologLogger(w io.Writer, level string, dev bool) *ZerologLogger {
	var out io.Writer = w
	if dev {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return &ZerologLogger{log: zerolog.New(out).Level(lvl).With().Timestamp().Logger()}
}

// WrapZerolog adapts an existing zerolog.Logger.
func WrapZerolog(l zerolog.Logger) *ZerologLogger { return &ZerologLogger{log: l} }

// Zerolog returns the underlying logger.
func (l *ZerologLogger) Zerolog() zerolog.Logger { return l.log }

func (l *ZerologLogger) Debug(msg string, args ...any) { emit(l.log.Debug(), msg, args) }
func (l *ZerologLogger) Info(msg string, args ...any)  { emit(l.log.Info(), msg, args) }
func (l *ZerologLogger) Warn(msg string, args ...any)  { emit(l.log.Warn(), msg, args) }
func (l *ZerologLogger) Error(msg string, args ...any) { emit(l.log.Error(), msg, args) }

// emit attaches alternating key/value args. error values go through Err so
// they land under the standard "error" field.
func emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if err, isErr := args[i+1].(error); isErr {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	if len(args)%2 == 1 {
		ev = ev.Interface("extra", args[len(args)-1])
	}
	ev.Msg(msg)
}

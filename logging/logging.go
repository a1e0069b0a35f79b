// Package logging defines the leveled logger the client writes to and
// adapters for [log/slog] and [github.com/rs/zerolog].
//
// Arguments follow the slog convention of alternating keys and values:
//
//	logger.Debug("http request built", "method", "GET", "url", u)
//
// Adapters record the source location of the code that called the
// Logger method, not of the adapter itself.
package logging

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Logger accepts leveled, structured messages.
type Logger interface {
	Verbose(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warning(msg string, args ...any)
	Error(msg string, args ...any)
}

// LevelVerbose is the slog level used for Verbose messages.
const LevelVerbose = slog.LevelDebug - 4

// callerSkip skips runtime.Callers, the adapter's log helper and the
// Logger method that invoked it.
const callerSkip = 3

// /////////////////////////////////////////////////////////////////

type nop struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }

func (nop) Verbose(string, ...any) {}
func (nop) Debug(string, ...any)   {}
func (nop) Info(string, ...any)    {}
func (nop) Warning(string, ...any) {}
func (nop) Error(string, ...any)   {}

// /////////////////////////////////////////////////////////////////

type slogLogger struct {
	l *slog.Logger
}

// Slog adapts l. A nil l uses [slog.Default].
func Slog(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}

	return slogLogger{l: l}
}

func (s slogLogger) Verbose(msg string, args ...any) { s.log(LevelVerbose, msg, args...) }
func (s slogLogger) Debug(msg string, args ...any)   { s.log(slog.LevelDebug, msg, args...) }
func (s slogLogger) Info(msg string, args ...any)    { s.log(slog.LevelInfo, msg, args...) }
func (s slogLogger) Warning(msg string, args ...any) { s.log(slog.LevelWarn, msg, args...) }
func (s slogLogger) Error(msg string, args ...any)   { s.log(slog.LevelError, msg, args...) }

func (s slogLogger) log(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(callerSkip, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)

	_ = s.l.Handler().Handle(ctx, r)
}

// /////////////////////////////////////////////////////////////////

type zerologLogger struct {
	z zerolog.Logger
}

// Zerolog adapts z. Verbose messages are written at trace level.
func Zerolog(z zerolog.Logger) Logger {
	return zerologLogger{z: z}
}

func (z zerologLogger) Verbose(msg string, args ...any) { z.log(zerolog.TraceLevel, msg, args) }
func (z zerologLogger) Debug(msg string, args ...any)   { z.log(zerolog.DebugLevel, msg, args) }
func (z zerologLogger) Info(msg string, args ...any)    { z.log(zerolog.InfoLevel, msg, args) }
func (z zerologLogger) Warning(msg string, args ...any) { z.log(zerolog.WarnLevel, msg, args) }
func (z zerologLogger) Error(msg string, args ...any)   { z.log(zerolog.ErrorLevel, msg, args) }

func (z zerologLogger) log(level zerolog.Level, msg string, args []any) {
	e := z.z.WithLevel(level)
	if e == nil {
		return
	}

	// Caller's own frame plus the Logger method.
	e = e.Caller(2)
	if len(args) > 0 {
		e = e.Fields(normalize(args))
	}

	e.Msg(msg)
}

// normalize turns slog-style args into the key/value list zerolog expects.
// slog.Attr values are flattened and a dangling value gets the !BADKEY key
// slog itself would use.
func normalize(args []any) []any {
	out := make([]any, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			out = append(out, a.Key, a.Value.Any())
		case string:
			if i+1 >= len(args) {
				out = append(out, "!BADKEY", a)
				continue
			}
			out = append(out, a, args[i+1])
			i++
		default:
			out = append(out, "!BADKEY", a)
		}
	}

	return out
}

package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// NewZerologConsole returns a ZerologLogger with a console writer, used
// when the CLI runs attached to a terminal.
func NewZerologConsole(w io.Writer, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}
	return &ZerologLogger{l: zerolog.New(out).With().Timestamp().Logger().Level(lvl)}
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.event(ctx, z.l.Debug(), args).Msg(msg)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.event(ctx, z.l.Info(), args).Msg(msg)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.event(ctx, z.l.Warn(), args).Msg(msg)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.event(ctx, z.l.Error(), args).Msg(msg)
}

func (z *ZerologLogger) With(args ...any) Logger {
	return &ZerologLogger{l: z.l.With().Fields(pairs(args)).Logger()}
}

func (z *ZerologLogger) event(ctx context.Context, e *zerolog.Event, args []any) *zerolog.Event {
	if ctx != nil {
		e = e.Ctx(ctx)
	}
	return e.Fields(pairs(args))
}

// pairs turns slog-style key–value args into a zerolog field map. A
// dangling value is recorded under "!BADKEY" like slog does.
func pairs(args []any) map[string]any {
	fields := make(map[string]any, len(args)/2+1)
	for i := 0; i < len(args); {
		key, ok := args[i].(string)
		if !ok || i+1 == len(args) {
			fields["!BADKEY"] = args[i]
			i++
			continue
		}
		fields[key] = normalize(args[i+1])
		i += 2
	}
	return fields
}

func normalize(v any) any {
	switch value := v.(type) {
	case error:
		return value.Error()
	case time.Duration:
		return value.String()
	case fmt.Stringer:
		return value.String()
	default:
		return v
	}
}

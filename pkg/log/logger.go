package log

import (
	"io"
	"log/slog"

	"github.com/rs/zerolog"
)

// SetupLogger configures both logging paths used by the CLI: the default
// slog logger (JSON, with ErrFmtHandler) and the process wide zerolog
// provider. Format "console" selects zerolog's human readable writer.
func SetupLogger(loglevel, format string, w io.Writer) error {
	level, err := ParseLevel(loglevel)
	if err != nil {
		return err
	}

	ops := slog.HandlerOptions{
		AddSource: level <= LevelDebug,
		Level:     slog.Level(level),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr.Key = "severity"
			case slog.MessageKey:
				attr.Key = "message"
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(w, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))

	out := w
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	SetProvider(NewZerologProvider(out, level))
	return nil
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

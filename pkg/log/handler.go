package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	nberrors "github.com/YuminosukeSato/textnb/pkg/errors"
)

// ErrFmtHandler is a slog handler to format stacktrace from cockroachdb/errors.
// It also tags classifier errors with their kind.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps the standard slog handler.
// The returned handler emits logs with stacktrace and error.kind attributes.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{
		handler: handler,
	}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var found error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == ErrAttrKey {
			if err, ok := attr.Value.Any().(error); ok {
				found = err
			}
			return false
		}
		return true
	})
	if found != nil {
		if kind := nberrors.KindOf(found); kind != nberrors.KindUnknown {
			r.AddAttrs(slog.String(ErrorKindKey, kind.String()))
		}
		if stacktrace := extractStacktrace(found); stacktrace != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
		}
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

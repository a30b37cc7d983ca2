package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cells/pkg/domain"
)

// LogObserver writes every record as a structured log line at level.
func LogObserver(logger *slog.Logger, level slog.Level) domain.Observer {
	return func(rec domain.Record) {
		attrs := []slog.Attr{
			slog.String("type", string(rec.Type)),
			slog.String("node", rec.NodeID),
			slog.String("action", rec.ActionID),
			slog.String("attribute", rec.Attribute),
		}
		switch rec.Type {
		case domain.RecordUpdate:
			attrs = append(attrs, slog.Any("prev", rec.Prev), slog.Any("next", rec.Next))
		case domain.RecordComputeStart:
			attrs = append(attrs, slog.Any("req", rec.Req))
		case domain.RecordComputeEnd:
			attrs = append(attrs, slog.Any("req", rec.Req), slog.Any("res", rec.Res))
		default:
			attrs = append(attrs, slog.Any("value", rec.Value))
		}
		logger.LogAttrs(context.Background(), level, "record", attrs...)
	}
}

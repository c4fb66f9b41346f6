package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey 贯穿请求链路的 Context Key
const TraceIDKey = "trace_id"

// ContextHandler 把 ctx 里的 trace_id 附加到每条日志上
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

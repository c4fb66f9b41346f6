package logger

import (
	"context"
	log "log/slog"
)

// TeeHandler 把一条日志同时写给所有下游 Handler
type TeeHandler struct {
	handlers []log.Handler
}

func (t *TeeHandler) Enabled(ctx context.Context, level log.Level) bool {
	return t.handlers[0].Enabled(ctx, level)
}

func (t *TeeHandler) Handle(ctx context.Context, r log.Record) error {
	for _, h := range t.handlers {
		if err := h.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (t *TeeHandler) WithAttrs(attrs []log.Attr) log.Handler {
	next := make([]log.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: next}
}

func (t *TeeHandler) WithGroup(name string) log.Handler {
	next := make([]log.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: next}
}

// RemoteFilterHandler 只把带 trace_id 的记录转发给远端 Handler
type RemoteFilterHandler struct {
	next log.Handler
}

func (f *RemoteFilterHandler) Enabled(ctx context.Context, level log.Level) bool {
	return f.next.Enabled(ctx, level)
}

func (f *RemoteFilterHandler) Handle(ctx context.Context, r log.Record) error {
	hasTraceID := false
	r.Attrs(func(a log.Attr) bool {
		if a.Key == TraceIDKey && a.Value.String() != "" {
			hasTraceID = true
			return false
		}
		return true
	})

	// 无 trace_id 的记录只留在本地
	if !hasTraceID {
		return nil
	}
	return f.next.Handle(ctx, r)
}

func (f *RemoteFilterHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &RemoteFilterHandler{next: f.next.WithAttrs(attrs)}
}

func (f *RemoteFilterHandler) WithGroup(name string) log.Handler {
	return &RemoteFilterHandler{next: f.next.WithGroup(name)}
}

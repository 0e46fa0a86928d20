package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/lmittmann/tint"
)

type contextKey string

const (
	RequestIDKey  contextKey = "request_id"
	RunIDKey      contextKey = "run_id"
	RouteIndexKey contextKey = "route_index"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// StackTraceHandler is a handler that adds stack trace to error records
// and extracts request_id, run_id and route_index from context
type StackTraceHandler struct {
	slog.Handler
}

func (h *StackTraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
			r.AddAttrs(slog.String("request_id", reqID))
		}

		if runID, ok := ctx.Value(RunIDKey).(string); ok {
			r.AddAttrs(slog.String("run_id", runID))
		}

		if idx, ok := ctx.Value(RouteIndexKey).(int); ok {
			r.AddAttrs(slog.Int("route_index", idx))
		}
	}

	if r.Level >= slog.LevelError {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		r.AddAttrs(slog.String("stack_trace", string(buf[:n])))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *StackTraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StackTraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *StackTraceHandler) WithGroup(name string) slog.Handler {
	return &StackTraceHandler{Handler: h.Handler.WithGroup(name)}
}

// WithRunID tags every log line written with ctx with the crawl run id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// WithRouteIndex tags every log line written with ctx with the route index being crawled.
func WithRouteIndex(ctx context.Context, idx int) context.Context {
	return context.WithValue(ctx, RouteIndexKey, idx)
}

// NewHandler builds the handler used by InitStructuredLogger. format is either
// FormatJSON (default) or FormatConsole for colored human readable output.
func NewHandler(w io.Writer, level slog.Leveler, format string) slog.Handler {
	addSource := level.Level() == slog.LevelDebug

	var handler slog.Handler
	switch format {
	case FormatConsole:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  addSource,
			TimeFormat: time.RFC3339,
		})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: addSource,
		})
	}

	return &StackTraceHandler{Handler: handler}
}

// InitStructuredLogger initialize structured logger
func InitStructuredLogger(level slog.Leveler, format string) {
	w := os.Stdout
	if format == FormatConsole {
		w = os.Stderr
	}

	slog.SetDefault(slog.New(NewHandler(w, level, format)))
}

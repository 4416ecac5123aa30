package middleware

import (
	"log/slog"
	"net/http"

	"github.com/boardflow/boardflow-api/internal/api/shared"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that assigns a trace ID to each
// request and attaches a trace-scoped logger to the request context.
// Apply it early in the chain so all subsequent handlers and services
// log with the trace ID.
func NewTraceMiddleware(baseLogger *slog.Logger) func(http.Handler) http.Handler {
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			log := baseLogger.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

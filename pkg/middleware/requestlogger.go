package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Hasib072/BookNest/pkg/logger"
)

// RequestLogger returns middleware that builds a request-scoped logger
// enriched with correlation_id, user_id, trace_id, and span_id, then stores it
// in context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// This middleware should be mounted AFTER RequestLogging (which sets
// correlation_id), Tracing (which sets the OpenTelemetry span context), and
// Auth (which sets the user ID).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

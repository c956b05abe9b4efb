package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"memgate/pkg/observability"
)

// Logger creates a logging middleware that also feeds request metrics.
func Logger(logger *zap.Logger, metrics *observability.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := routePattern(r)

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", elapsed),
				zap.String("requestID", middleware.GetReqID(r.Context())),
				zap.String("remoteAddr", r.RemoteAddr),
			)

			if metrics != nil {
				metrics.RequestsTotal.WithLabelValues(
					r.Method, route, strconv.Itoa(ww.Status())).Inc()
				metrics.RequestDuration.WithLabelValues(
					r.Method, route).Observe(elapsed.Seconds())
			}
		})
	}
}

// routePattern returns the chi route pattern so metric labels stay
// low-cardinality. Falls back to the raw path before routing runs.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/feedback-backend/pkg/clientip"
	"github.com/AnshRaj112/feedback-backend/pkg/metrics"
)

// AccessLog logs one line per request and records HTTP metrics under the
// matched route pattern.
func AccessLog(log *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveHTTP(route, r.Method, status, elapsed)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", elapsed),
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("ip", clientip.Anonymized(r)),
			}
			if status >= http.StatusInternalServerError {
				log.Warn("request completed", fields...)
				return
			}
			log.Info("request completed", fields...)
		})
	}
}

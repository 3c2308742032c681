package middleware

import (
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

// Logging emits one line per request once the handler returns. Probe and
// scrape traffic is logged at debug so it does not drown the access log.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			ctx = logg.WithFields(ctx, map[string]any{
				"route":       routePattern(r),
				"status":      responseStatus(ww),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if isOperationalPath(r.URL.Path) {
				logg.Debug(ctx, "request.complete")
				return
			}
			logg.Info(ctx, "request.complete")
		})
	}
}

func isOperationalPath(path string) bool {
	return strings.HasPrefix(path, "/health/") || path == "/metrics"
}

func responseStatus(ww chimw.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}

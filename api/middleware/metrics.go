package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records request counts and latency labelled by the chi route
// pattern, so path parameters do not explode label cardinality.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			m.Observe(routePattern(r), r.Method, responseStatus(ww), time.Since(start))
		})
	}
}

// routePattern is only complete once routing has finished, i.e. after
// next.ServeHTTP returns.
func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

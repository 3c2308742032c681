package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Upstream ids end up in logs and response headers, so only short opaque
// tokens are accepted.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{8,128}$`)

// RequestID propagates a caller supplied X-Request-Id or mints a UUID, echoes it
// on the response and tags the request logger with it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if !validRequestID.MatchString(reqID) {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

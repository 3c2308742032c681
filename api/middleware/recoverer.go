package middleware

import (
	"fmt"
	"net/http"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

// Recoverer turns a handler panic into a 500 error envelope. http.ErrAbortHandler
// is re-raised so net/http can drop the connection as the handler asked.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithField(ctx, "route", routePattern(r))
				}
				// WriteError logs the stack for internal errors.
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic recovered"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
)

// PathInt64 reads a positive numeric chi URL parameter.
func PathInt64(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid path parameter").WithDetails(map[string]any{"field": key, "value": raw})
	}
	return value, nil
}

// PathParam returns the trimmed chi URL parameter.
func PathParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

package validators

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func queryError(key, message string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"field": key})
}

// ParseQueryInt reads an optional bounded integer, falling back to
// defaultVal when the parameter is absent.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, "query parameter must be numeric")
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryInt64 parses a required positive identifier from the query string.
func ParseQueryInt64(r *http.Request, key string) (int64, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return 0, queryError(key, "query parameter required")
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, queryError(key, "query parameter must be a positive integer")
	}
	return value, nil
}

// ParseQueryQuantity parses a required integer of either sign. Stock
// adjustments and availability checks hand the value to the database as is.
func ParseQueryQuantity(r *http.Request, key string) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return 0, queryError(key, "query parameter required")
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < math.MinInt32 || value > math.MaxInt32 {
		return 0, queryError(key, "query parameter must be an integer")
	}
	return value, nil
}

// ParseQueryDecimal parses an optional decimal; absent values yield nil.
func ParseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, queryError(key, "query parameter must be a decimal")
	}
	return &value, nil
}

func RequireQuery(r *http.Request, key string) (string, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return "", queryError(key, "query parameter required")
	}
	return raw, nil
}

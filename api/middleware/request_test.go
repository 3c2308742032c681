package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

func TestRequestIDKeepsValidHeaderAndReplacesJunk(t *testing.T) {
	h := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "gw-20261016-0001")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "gw-20261016-0001", rec.Header().Get(requestIDHeader))

	for _, bad := range []string{"", "short", "has space in it", "line\nbreak-injected", strings.Repeat("a", 200)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, bad)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		got := rec.Header().Get(requestIDHeader)
		assert.NotEqual(t, bad, got)
		assert.Len(t, got, 36, "expected a generated uuid for %q", bad)
	}
}

func TestRecovererWritesInternalEnvelope(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "api-test", Output: &logs})

	r := chi.NewRouter()
	r.Use(Recoverer(logg))
	r.Get("/api/v1/orders/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		panic("nil inventory row")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/7", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "nil inventory row")
	assert.Contains(t, logs.String(), "nil inventory row")
}

func TestRecovererReraisesAbort(t *testing.T) {
	h := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLoggingDemotesProbeTraffic(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "api-test", Level: zerolog.InfoLevel, Output: &logs})

	r := chi.NewRouter()
	r.Use(Logging(logg))
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {})
	r.Get("/api/v1/products/{productId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Empty(t, logs.String())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/3", nil))
	var line map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &line))
	assert.Equal(t, "request.complete", line["message"])
	assert.Equal(t, "/api/v1/products/{productId}", line["route"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])
}

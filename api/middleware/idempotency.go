package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

const (
	idempotencyHeader      = "Idempotency-Key"
	replayedHeader         = "Idempotent-Replayed"
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	// pendingTTL bounds how long a crashed request can block its key.
	pendingTTL = 2 * time.Minute
)

type idempotencyRule struct {
	method string
	match  func(path string) bool
	ttl    time.Duration
	// optional rules only deduplicate when the client sends a key.
	optional bool
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, match: pathIs("/api/v1/orders"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, match: pathAround("/api/v1/orders/", "/history"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, match: pathIs("/api/v1/products"), ttl: defaultIdempotencyTTL, optional: true},
	{method: http.MethodPost, match: pathIs("/api/v1/quality-inspections"), ttl: defaultIdempotencyTTL, optional: true},
	{method: http.MethodPost, match: pathIs("/api/test/oracle/merge/inventory"), ttl: defaultIdempotencyTTL, optional: true},
}

type idempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// idempotencyRecord is what a key maps to in Redis. A pending record reserves
// the key while the first request is still running.
type idempotencyRecord struct {
	Pending     bool              `json:"pending,omitempty"`
	RequestHash string            `json:"request_hash"`
	Status      int               `json:"status,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        []byte            `json:"body,omitempty"`
}

var replayedHeaders = []string{"Content-Type", "Location"}

// Idempotency makes retried writes safe. The first request carrying an
// Idempotency-Key reserves it, runs, and stores its response; later requests
// with the same key and payload get that response replayed. A concurrent
// duplicate or a reused key with a different payload is rejected with 409.
// 5xx responses release the key so the client can retry. A zero ttl keeps
// each rule's own retention.
func Idempotency(store idempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			rule, ok := matchRule(r.Method, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				if rule.optional {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
			if err != nil {
				responses.WriteError(ctx, logg, w, bodyReadError(err))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := hashRequest(r.URL.RawQuery, body)
			key := store.IdempotencyKey(r.Method+"|"+strings.TrimSuffix(r.URL.Path, "/"), clientKey)

			reserved, err := reserve(ctx, store, key, hash)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replayOrReject(ctx, logg, w, store, key, hash)
				return
			}

			var captured bytes.Buffer
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&captured)
			next.ServeHTTP(ww, r)

			// Detached so a client hang-up does not leave the key pending.
			storeCtx := context.WithoutCancel(ctx)
			status := responseStatus(ww)
			if status >= http.StatusInternalServerError {
				if err := store.Del(storeCtx, key); err != nil && logg != nil {
					logg.Error(ctx, "idempotency.release_failed", err)
				}
				return
			}

			record := idempotencyRecord{RequestHash: hash, Status: status, Body: captured.Bytes()}
			for _, name := range replayedHeaders {
				if v := ww.Header().Get(name); v != "" {
					if record.Headers == nil {
						record.Headers = map[string]string{}
					}
					record.Headers[name] = v
				}
			}
			retention := rule.ttl
			if ttl > 0 {
				retention = ttl
			}
			if err := saveRecord(storeCtx, store, key, record, retention); err != nil && logg != nil {
				logg.Error(ctx, "idempotency.persist_failed", err)
			}
		})
	}
}

func reserve(ctx context.Context, store idempotencyStore, key, hash string) (bool, error) {
	payload, err := json.Marshal(idempotencyRecord{Pending: true, RequestHash: hash})
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(payload), pendingTTL)
}

func bodyReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large").
			WithDetails(map[string]any{"limit_bytes": tooLarge.Limit})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
}

func saveRecord(ctx context.Context, store idempotencyStore, key string, record idempotencyRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, string(payload), ttl)
}

func replayOrReject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, store idempotencyStore, key, hash string) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// The pending reservation expired between SetNX and Get.
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != hash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request"))
	case record.Pending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
	default:
		for name, value := range record.Headers {
			w.Header().Set(name, value)
		}
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(record.Status)
		_, _ = w.Write(record.Body)
	}
}

func hashRequest(query string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func matchRule(method, path string) (idempotencyRule, bool) {
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.match(path) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func pathIs(path string) func(string) bool {
	return func(candidate string) bool {
		return strings.TrimSuffix(candidate, "/") == path
	}
}

func pathAround(prefix, suffix string) func(string) bool {
	return func(candidate string) bool {
		candidate = strings.TrimSuffix(candidate, "/")
		return strings.HasPrefix(candidate, prefix) && strings.HasSuffix(candidate, suffix)
	}
}

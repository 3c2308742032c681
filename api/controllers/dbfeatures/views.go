package dbfeatures

import (
	"context"
	"net/http"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/history"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

type historyReader interface {
	FindHierarchy(ctx context.Context, orderID int64) ([]history.Node, error)
	ListDailySummaries(ctx context.Context) ([]models.DailySummary, error)
	RefreshDailySummary(ctx context.Context, concurrently bool) error
}

// OrderHierarchy returns the order's history tree depth first.
func OrderHierarchy(svc historyReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.PathInt64(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		nodes, err := svc.FindHierarchy(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(nodes))
	}
}

// DailySummary reads the daily production materialized view.
func DailySummary(svc historyReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListDailySummaries(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(rows))
	}
}

// RefreshDailySummary rebuilds the materialized view with a blocking refresh.
func RefreshDailySummary(svc historyReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RefreshDailySummary(r.Context(), false); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, map[string]any{
			"message": "Materialized View refreshed successfully",
		})
	}
}

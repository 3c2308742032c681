// Package dbfeatures serves /api/test/oracle, a set of endpoints that exercise
// one database capability each. Bodies are written without the success
// envelope because existing clients read the bare JSON.
package dbfeatures

import (
	"context"
	"net/http"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"github.com/shopspring/decimal"
)

type totalRecalculator interface {
	RecalculateTotal(ctx context.Context, orderID int64) (decimal.Decimal, error)
}

type availabilityChecker interface {
	CheckAvailable(ctx context.Context, productID int64, quantity int) (inventory.Availability, error)
}

type statusReader interface {
	Status(ctx context.Context, id int64) (*string, error)
}

type sequenceAdvancer interface {
	SequenceNextVal(ctx context.Context, name string) (int64, error)
}

// CalculateTotal calls the calculate_order_total procedure.
func CalculateTotal(svc totalRecalculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.PathInt64(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		total, err := svc.RecalculateTotal(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, map[string]any{
			"orderId":     orderID,
			"totalAmount": total,
		})
	}
}

// CheckAvailable calls check_product_available. A product without an
// inventory record reports false.
func CheckAvailable(svc availabilityChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseQueryInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty, err := validators.ParseQueryQuantity(r, "requiredQty")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		availability, err := svc.CheckAvailable(r.Context(), productID, qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, map[string]any{
			"available": availability == inventory.AvailabilityAvailable,
		})
	}
}

// ProductStatus decodes the product's status code through get_product_status.
func ProductStatus(svc statusReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.Status(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, map[string]any{
			"productId": productID,
			"status":    status,
		})
	}
}

// SequenceNextVal advances one of the allow-listed sequences.
func SequenceNextVal(svc sequenceAdvancer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := validators.RequireQuery(r, "sequenceName")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		next, err := svc.SequenceNextVal(r.Context(), name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, map[string]any{
			"sequenceName": name,
			"nextVal":      next,
		})
	}
}

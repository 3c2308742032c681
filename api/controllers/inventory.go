package controllers

import (
	"net/http"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

func InventoryGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

type putInventoryRequest struct {
	Quantity *int    `json:"quantity" validate:"required,min=0"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=100"`
}

// InventoryPut replaces the stored quantity and location for a product.
func InventoryPut(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload putInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Put(r.Context(), productID, inventory.PutInput{
			Quantity: *payload.Quantity,
			Location: payload.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

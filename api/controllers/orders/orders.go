package orders

import (
	"net/http"
	"strings"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	internalorders "github.com/dongkoo81/oracle-postgresql-migration/internal/orders"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/pagination"
)

type createOrderRequest struct {
	OrderNo string             `json:"order_no" validate:"required,max=50"`
	Notes   *string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Items   []orderItemRequest `json:"items" validate:"dive"`
}

type orderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// Create runs the order creation workflow and answers 201 with the stored
// order. The returned total is the value read before recalculation.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.CreateOrderInput{
			OrderNo: strings.TrimSpace(payload.OrderNo),
			Notes:   payload.Notes,
			Items:   make([]internalorders.LineItemInput, 0, len(payload.Items)),
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, internalorders.LineItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// List returns a keyset page of production orders, newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		list, err := svc.ListOrders(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns an order with its line items.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.PathInt64(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

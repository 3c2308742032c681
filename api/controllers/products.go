package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	productsvc "github.com/dongkoo81/oracle-postgresql-migration/internal/products"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/enums"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

// ProductList returns every product ordered by id.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// ProductDetail returns a product with its inventory record.
func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductCreate handles product creation with optional starting stock.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type createProductRequest struct {
	ProductCode string                  `json:"product_code" validate:"required,max=50"`
	ProductName string                  `json:"product_name" validate:"required,max=200"`
	UnitPrice   decimal.Decimal         `json:"unit_price"`
	StatusCode  string                  `json:"status_code,omitempty" validate:"omitempty,len=1"`
	Inventory   *createInventoryRequest `json:"inventory,omitempty"`
}

type createInventoryRequest struct {
	Quantity int     `json:"quantity" validate:"min=0"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=100"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	status := enums.ProductStatusActive
	if code := strings.TrimSpace(r.StatusCode); code != "" {
		parsed, err := enums.ParseProductStatus(code)
		if err != nil {
			return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status code")
		}
		status = parsed
	}

	input := productsvc.CreateProductInput{
		ProductCode: validators.SanitizeString(r.ProductCode, 50),
		ProductName: validators.SanitizeString(r.ProductName, 200),
		UnitPrice:   r.UnitPrice,
		StatusCode:  status,
	}
	if r.Inventory != nil {
		input.Inventory = &productsvc.InventoryInput{
			Quantity: r.Inventory.Quantity,
			Location: r.Inventory.Location,
		}
	}
	return input, nil
}

package dbfeatures

import (
	"context"
	"net/http"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/orders"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/products"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

type productSearcher interface {
	Search(ctx context.Context, filters products.SearchFilters) ([]models.Product, error)
}

type productLister interface {
	CreatedToday(ctx context.Context) ([]models.Product, error)
	TopByPrice(ctx context.Context, limit int) ([]models.Product, error)
	WithoutInventory(ctx context.Context) ([]models.Product, error)
	WithInventory(ctx context.Context) ([]products.ProductInventoryRow, error)
}

type orderSearcher interface {
	SearchByDateRange(ctx context.Context, startDate, endDate string) ([]orders.OrderSummaryRow, error)
}

// SearchProducts runs the dynamic product search. Every filter is optional.
func SearchProducts(svc productSearcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Search(r.Context(), products.SearchFilters{
			Name:     r.URL.Query().Get("name"),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(list))
	}
}

// TodayProducts lists products created since midnight of the database clock.
func TodayProducts(svc productLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.CreatedToday(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(list))
	}
}

// OrdersByDateRange lists orders whose order_date falls inside the inclusive
// startDate..endDate range.
func OrdersByDateRange(svc orderSearcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := validators.RequireQuery(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.RequireQuery(r, "endDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.SearchByDateRange(r.Context(), start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(rows))
	}
}

// TopProducts returns the most expensive products.
func TopProducts(svc productLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", products.DefaultTopLimit, 1, products.MaxTopLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.TopByPrice(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(list))
	}
}

// ProductsWithoutInventory returns products that have no inventory record.
func ProductsWithoutInventory(svc productLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.WithoutInventory(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(list))
	}
}

// ProductsWithInventory returns every product joined with its inventory,
// when it has one.
func ProductsWithInventory(svc productLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.WithInventory(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(rows))
	}
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

package dbfeatures

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/documents"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/specs"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

// defaultDocumentTitle names documents stored through the large-text endpoint.
const defaultDocumentTitle = "Test Doc"

type documentStore interface {
	Save(ctx context.Context, input documents.SaveInput) (*models.ProductDocument, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.ProductDocument, error)
}

type specStore interface {
	Save(ctx context.Context, input specs.SaveInput) (*models.ProductSpec, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.ProductSpec, error)
}

type inspectionLister interface {
	ListByResult(ctx context.Context, result string) ([]models.QualityInspection, error)
}

type inventoryMerger interface {
	Merge(ctx context.Context, productID int64, quantity int) error
}

// SaveDocument stores the content query parameter as a product document.
func SaveDocument(svc documentStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseQueryInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		content := r.URL.Query().Get("content")
		doc, err := svc.Save(r.Context(), documents.SaveInput{
			ProductID: productID,
			Title:     defaultDocumentTitle,
			Content:   content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, map[string]any{
			"docId":         doc.DocID,
			"contentLength": utf8.RuneCountInString(content),
		})
	}
}

// SaveSpec stores the xmlContent query parameter as a version 1.0 spec.
func SaveSpec(svc specStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseQueryInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		spec, err := svc.Save(r.Context(), specs.SaveInput{
			ProductID: productID,
			XML:       r.URL.Query().Get("xmlContent"),
			Version:   specs.DefaultVersion,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, map[string]any{"specId": spec.SpecID})
	}
}

// ProductDocuments lists a product's documents.
func ProductDocuments(svc documentStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(list))
	}
}

// ProductSpecs lists a product's specs, newest first.
func ProductSpecs(svc specStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(list))
	}
}

// InspectionsByResult reads the partitioned inspections table.
func InspectionsByResult(svc inspectionLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListByResult(r.Context(), validators.PathParam(r, "result"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, nonNil(list))
	}
}

// MergeInventory adds quantity to the product's stock, creating the record
// when it is missing.
func MergeInventory(svc inventoryMerger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseQueryInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity, err := validators.ParseQueryQuantity(r, "quantity")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Merge(r.Context(), productID, quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, map[string]any{
			"productId":     productID,
			"quantityAdded": quantity,
			"message":       "Inventory merged successfully",
		})
	}
}

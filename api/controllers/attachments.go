package controllers

import (
	"net/http"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/documents"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/specs"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

type saveDocumentRequest struct {
	Title    string  `json:"doc_title" validate:"required,max=200"`
	Content  string  `json:"content"`
	FileType *string `json:"file_type,omitempty" validate:"omitempty,max=20"`
}

// DocumentCreate stores a document body against a product.
func DocumentCreate(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload saveDocumentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.Save(r.Context(), documents.SaveInput{
			ProductID: productID,
			Title:     payload.Title,
			Content:   payload.Content,
			FileType:  payload.FileType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, doc)
	}
}

func DocumentList(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		docs, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, docs)
	}
}

type saveSpecRequest struct {
	SpecXML string `json:"spec_xml" validate:"required"`
	Version string `json:"version,omitempty" validate:"omitempty,max=20"`
}

// SpecCreate stores a well-formed XML specification against a product.
func SpecCreate(svc specs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload saveSpecRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		spec, err := svc.Save(r.Context(), specs.SaveInput{
			ProductID: productID,
			XML:       payload.SpecXML,
			Version:   payload.Version,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, spec)
	}
}

func SpecList(svc specs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

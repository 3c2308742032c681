package controllers

import (
	"net/http"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/quality"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

type recordInspectionRequest struct {
	InspectionDate string  `json:"inspection_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	OrderID        *int64  `json:"order_id,omitempty" validate:"omitempty,min=1"`
	ProductID      int64   `json:"product_id" validate:"required,min=1"`
	Inspector      string  `json:"inspector" validate:"required,max=100"`
	Result         string  `json:"result" validate:"required"`
	DefectCount    int     `json:"defect_count" validate:"min=0"`
	Remarks        *string `json:"remarks,omitempty" validate:"omitempty,max=1000"`
}

// InspectionCreate records a quality inspection in its monthly partition.
func InspectionCreate(svc quality.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload recordInspectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := quality.RecordInput{
			OrderID:     payload.OrderID,
			ProductID:   payload.ProductID,
			Inspector:   payload.Inspector,
			Result:      payload.Result,
			DefectCount: payload.DefectCount,
			Remarks:     payload.Remarks,
		}
		if payload.InspectionDate != "" {
			day, err := time.Parse(time.DateOnly, payload.InspectionDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inspection_date"))
				return
			}
			input.InspectionDate = &day
		}

		inspection, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, inspection)
	}
}

// InspectionList lists inspections filtered by ?result=, newest first.
func InspectionList(svc quality.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := validators.RequireQuery(r, "result")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByResult(r.Context(), result)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

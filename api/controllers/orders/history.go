package orders

import (
	"net/http"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/api/validators"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/history"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

type recordStepRequest struct {
	ParentHistoryID *int64  `json:"parent_history_id,omitempty" validate:"omitempty,min=1"`
	ProcessStep     string  `json:"process_step" validate:"required,max=100"`
	Quantity        int     `json:"quantity" validate:"min=0"`
	WorkDate        string  `json:"work_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// RecordStep appends a process step to the order's history tree.
func RecordStep(svc history.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.PathInt64(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload recordStepRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := history.StepInput{
			ParentHistoryID: payload.ParentHistoryID,
			ProcessStep:     payload.ProcessStep,
			Quantity:        payload.Quantity,
			Notes:           payload.Notes,
		}
		if payload.WorkDate != "" {
			day, err := time.Parse(time.DateOnly, payload.WorkDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid work_date"))
				return
			}
			input.WorkDate = &day
		}

		step, err := svc.RecordStep(r.Context(), orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, step)
	}
}

// Hierarchy returns the order's process steps depth first with their level.
func Hierarchy(svc history.Service, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, nodes)
	}
}

package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Codes whose own message is safe to show to clients. Everything else answers
// with the code's public message.
var clientFacingCodes = map[pkgerrors.Code]bool{
	pkgerrors.CodeValidation:            true,
	pkgerrors.CodeNotFound:              true,
	pkgerrors.CodeConflict:              true,
	pkgerrors.CodeInsufficientInventory: true,
	pkgerrors.CodeIdempotency:           true,
	pkgerrors.CodeRateLimit:             true,
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteRaw writes payload without the success envelope. The /api/test/oracle
// endpoints answer with bare bodies that existing clients already parse.
func WriteRaw(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

// WriteError maps err onto its HTTP status and error envelope. Client errors
// log at warn level; server and dependency failures log at error level with
// the Postgres diagnostics pulled out of the chain.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	body := ErrorBody{Code: string(typed.Code()), Message: meta.PublicMessage}
	if clientFacingCodes[typed.Code()] && typed.Message() != "" {
		body.Message = typed.Message()
	}
	if meta.DetailsAllowed && typed.Details() != nil {
		body.Details = typed.Details()
	}

	if logg != nil {
		logError(ctx, logg, meta.HTTPStatus, err)
	}
	writeJSON(w, meta.HTTPStatus, ErrorEnvelope{Error: body})
}

func logError(ctx context.Context, logg *logger.Logger, status int, err error) {
	fields := pkgerrors.Dump(err).Fields()
	fields["http_status"] = status
	ctx = logg.WithFields(ctx, fields)
	if status < http.StatusInternalServerError {
		logg.Warn(ctx, "request.rejected")
		return
	}
	logg.Error(ctx, "request.error", err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	// The status line is already out; an encode failure can only truncate the body.
	_ = json.NewEncoder(w).Encode(payload)
}

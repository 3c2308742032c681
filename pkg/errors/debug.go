package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain for structured logging.
type ErrorDump struct {
	TopMessage string
	Code       Code
	Chain      []string
	// PG is set when a Postgres server error sits anywhere in the chain.
	PG *PGDiagnostics
}

// PGDiagnostics are the server-side fields of a Postgres error. Routine and
// Where locate failures raised inside PL/pgSQL such as calculate_order_total.
type PGDiagnostics struct {
	Code       string
	Severity   string
	Message    string
	Detail     string
	Where      string
	Routine    string
	Table      string
	Column     string
	Constraint string
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error(), PG: pgDiagnostics(err)}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

// pgDiagnostics understands both drivers: pgx (gorm's postgres dialector)
// and lib/pq.
func pgDiagnostics(err error) *PGDiagnostics {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PGDiagnostics{
			Code:       pgxErr.Code,
			Severity:   pgxErr.Severity,
			Message:    pgxErr.Message,
			Detail:     pgxErr.Detail,
			Where:      pgxErr.Where,
			Routine:    pgxErr.Routine,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Constraint: pgxErr.ConstraintName,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGDiagnostics{
			Code:       string(pqErr.Code),
			Severity:   pqErr.Severity,
			Message:    pqErr.Message,
			Detail:     pqErr.Detail,
			Where:      pqErr.Where,
			Routine:    pqErr.Routine,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Constraint: pqErr.Constraint,
		}
	}
	return nil
}

// Fields renders the dump as log fields. Empty Postgres attributes are left out.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if d.PG == nil {
		return fields
	}
	for key, value := range map[string]string{
		"pg_code":       d.PG.Code,
		"pg_severity":   d.PG.Severity,
		"pg_message":    d.PG.Message,
		"pg_detail":     d.PG.Detail,
		"pg_where":      d.PG.Where,
		"pg_routine":    d.PG.Routine,
		"pg_table":      d.PG.Table,
		"pg_column":     d.PG.Column,
		"pg_constraint": d.PG.Constraint,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", detailsOK: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeInsufficientInventory, status: http.StatusConflict, publicMsg: "insufficient inventory", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestNotFoundCarriesEntityAndID(t *testing.T) {
	err := NotFound("product", int64(42))
	if err.Code() != CodeNotFound {
		t.Fatalf("expected not found, got %s", err.Code())
	}
	if err.Message() != "product not found" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected map details, got %T", err.Details())
	}
	if details["entity"] != "product" || details["id"] != int64(42) {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestAsAndIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInsufficientInventory, "short"))
	if got := As(err); got == nil || got.Code() != CodeInsufficientInventory {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeInsufficientInventory) {
		t.Fatal("expected IsCode to match wrapped code")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatal("IsCode matched the wrong code")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "production_orders_order_no_key",
		TableName:      "production_orders",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, pgErr, "insert order")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if dump.PG == nil || dump.PG.Code != "23505" || dump.PG.Constraint != "production_orders_order_no_key" {
		t.Fatalf("unexpected pg fields %+v", dump.PG)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}

	fields := dump.Fields()
	if fields["pg_table"] != "production_orders" {
		t.Fatalf("expected pg_table field, got %v", fields)
	}
	if _, ok := fields["pg_where"]; ok {
		t.Fatal("empty pg attributes must be omitted")
	}
}

func TestDumpFromLibPQ(t *testing.T) {
	err := fmt.Errorf("call: %w", &pq.Error{Code: "P0002", Message: "order 9 not found", Routine: "exec_stmt_raise"})
	dump := Dump(err)
	if dump.PG == nil || dump.PG.Code != "P0002" || dump.PG.Routine != "exec_stmt_raise" {
		t.Fatalf("unexpected pq diagnostics %+v", dump.PG)
	}
	if Dump(stdErrors.New("plain")).PG != nil {
		t.Fatal("plain errors carry no pg diagnostics")
	}
	if _, ok := Dump(stdErrors.New("plain")).Fields()["error_code"]; ok {
		t.Fatal("untyped errors have no error_code")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("connection reset"), "load order")
	if got := err.Error(); got != "DEPENDENCY_ERROR: load order: connection reset" {
		t.Fatalf("unexpected error string %q", got)
	}
	if got := New(CodeValidation, "bad input").Error(); got != "VALIDATION_ERROR: bad input" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestIsCodeLooksPastOuterError(t *testing.T) {
	inner := NotFound("order", int64(9))
	outer := Wrap(CodeDependency, fmt.Errorf("tx: %w", inner), "create order")
	if !IsCode(outer, CodeNotFound) {
		t.Fatal("expected nested not-found to match")
	}
	if !IsCode(outer, CodeDependency) {
		t.Fatal("expected outer code to match")
	}
	if IsCode(outer, CodeConflict) {
		t.Fatal("unexpected conflict match")
	}
}

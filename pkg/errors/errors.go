// Package errors defines the coded error type shared by services and the
// HTTP layer. Services return *Error values; api/responses maps the code to
// a status and a client-safe message.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeConflict   Code = "CONFLICT"
	// CodeInsufficientInventory rejects an order line whose product does not
	// have enough stock.
	CodeInsufficientInventory Code = "INSUFFICIENT_INVENTORY"
	CodeIdempotency           Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit             Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal              Code = "INTERNAL_ERROR"
	// CodeDependency covers Postgres and Redis failures.
	CodeDependency Code = "DEPENDENCY_ERROR"
)

// Metadata is how a code is presented over HTTP.
type Metadata struct {
	HTTPStatus    int
	Retryable     bool
	PublicMessage string
	// DetailsAllowed lets the error's details reach the response body.
	DetailsAllowed bool
}

// MetadataFor returns the presentation of code. Unknown codes are treated as
// internal errors.
func MetadataFor(code Code) Metadata {
	switch code {
	case CodeValidation:
		return Metadata{HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true}
	case CodeNotFound:
		return Metadata{HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found", DetailsAllowed: true}
	case CodeConflict:
		return Metadata{HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected"}
	case CodeInsufficientInventory:
		return Metadata{HTTPStatus: http.StatusConflict, PublicMessage: "insufficient inventory", DetailsAllowed: true}
	case CodeIdempotency:
		return Metadata{HTTPStatus: http.StatusConflict, PublicMessage: "idempotency key reused", DetailsAllowed: true}
	case CodeRateLimit:
		return Metadata{HTTPStatus: http.StatusTooManyRequests, PublicMessage: "rate limit exceeded"}
	case CodeDependency:
		return Metadata{HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "dependency unavailable", DetailsAllowed: true}
	}
	return Metadata{HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "internal server error"}
}

// Error is a coded error with an optional cause and client-facing details.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches code and message to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// NotFound names the missing entity and its identifier in the details.
func NotFound(entity string, id any) *Error {
	return New(CodeNotFound, entity+" not found").
		WithDetails(map[string]any{"entity": entity, "id": id})
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets the details in place and returns e for chaining.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// Error renders "CODE: message: cause" for logs. Clients never see it.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether any *Error in err's chain carries code, so a
// dependency failure wrapping a not-found still matches CodeNotFound.
func IsCode(err error, code Code) bool {
	for err != nil {
		typed := As(err)
		if typed == nil {
			return false
		}
		if typed.code == code {
			return true
		}
		err = typed.cause
	}
	return false
}

// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
//
// Services reject requests with *Error values; handlers translate them to HTTP
// with Status. Anything that is not an *Error is an internal failure.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a rejection. Clients branch on Code and Reason, never on Detail.
type Code string

const (
	CodeValidacion   Code = "VALIDACION"    // malformed or missing input
	CodeReferencia   Code = "REFERENCIA"    // unknown or foreign-tenant entity
	CodeReglaNegocio Code = "REGLA_NEGOCIO" // stock, inactive, double open/close, notes
	CodeAritmetica   Code = "ARITMETICA"    // non-finite computed totals
	CodeConflicto    Code = "CONFLICTO"     // lost a concurrent race, retry
	CodeLimitePlan   Code = "LIMITE_PLAN"   // plan feature or usage limit veto
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string                 `json:"detail"`
	Code   Code                   `json:"code,omitempty"`
	Reason string                 `json:"reason,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
	// Retryable tells the caller the same request may succeed if resent as-is.
	Retryable bool `json:"retryable,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   Code              `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Code: CodeValidacion, Fields: fields}
}

// Error is a rejection raised by the service layer. It leaves no state behind.
type Error struct {
	Code      Code
	Reason    string
	Detail    string
	Data      map[string]interface{}
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// With attaches a computed value the caller needs to correct the request.
func (e *Error) With(key string, value interface{}) *Error {
	if e.Data == nil {
		e.Data = make(map[string]interface{})
	}
	e.Data[key] = value
	return e
}

// Envelope renders the rejection for the wire.
func (e *Error) Envelope() *APIError {
	return &APIError{
		Detail:    e.Detail,
		Code:      e.Code,
		Reason:    e.Reason,
		Data:      e.Data,
		Retryable: e.Retryable,
	}
}

func newError(code Code, reason, format string, args ...interface{}) *Error {
	return &Error{Code: code, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func Validacion(reason, format string, args ...interface{}) *Error {
	return newError(CodeValidacion, reason, format, args...)
}

func Referencia(reason, format string, args ...interface{}) *Error {
	return newError(CodeReferencia, reason, format, args...)
}

func ReglaNegocio(reason, format string, args ...interface{}) *Error {
	return newError(CodeReglaNegocio, reason, format, args...)
}

func Aritmetica(reason, format string, args ...interface{}) *Error {
	return newError(CodeAritmetica, reason, format, args...)
}

func LimitePlan(reason, format string, args ...interface{}) *Error {
	return newError(CodeLimitePlan, reason, format, args...)
}

// Conflicto wraps the datastore error that lost the race.
func Conflicto(reason string, err error) *Error {
	e := newError(CodeConflicto, reason, "operacion concurrente en conflicto, reintente")
	e.Retryable = true
	e.Err = err
	return e
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is a rejection with the given reason.
func Is(err error, reason string) bool {
	e, ok := As(err)
	return ok && e.Reason == reason
}

// Status maps a rejection code to its HTTP status.
func Status(code Code) int {
	switch code {
	case CodeValidacion, CodeAritmetica:
		return http.StatusUnprocessableEntity
	case CodeReferencia:
		return http.StatusNotFound
	case CodeReglaNegocio, CodeConflicto:
		return http.StatusConflict
	case CodeLimitePlan:
		return http.StatusPaymentRequired
	default:
		return http.StatusBadRequest
	}
}

package ynab

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateImport is returned when YNAB rejects a transaction because a
// transaction with the same account and import id already exists. Callers
// treat this as success for idempotency purposes.
var ErrDuplicateImport = errors.New("transaction with this import id already exists")

// RequestError carries the status and body of a failed API call.
type RequestError struct {
	Status int
	Path   string
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("ynab request to %s failed with status %d: %s", e.Path, e.Status, e.Body)
}

// NotFoundError is a 404 with the resource kind inferred from the request
// path, so callers can tell a missing budget from a missing transaction.
type NotFoundError struct {
	Kind string
	Path string
	Body string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ynab %s not found: %s", e.Kind, e.Path)
}

// BadRequestError is a 400, usually a malformed or rejected payload.
type BadRequestError struct {
	Path string
	Body string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("ynab rejected request to %s: %s", e.Path, e.Body)
}

// ValidationError wraps a payload that could not be decoded into the
// expected shape.
type ValidationError struct {
	Path string
	Body string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ynab response from %s failed validation: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// resourceKind maps a request path to the resource it addresses. The
// transaction and account segments are checked before the budget one
// because every path starts with /budgets.
func resourceKind(path string) string {
	switch {
	case strings.Contains(path, "/transactions"):
		return "transaction"
	case strings.Contains(path, "/accounts"):
		return "account"
	default:
		return "budget"
	}
}

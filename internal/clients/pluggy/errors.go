package pluggy

import (
	"fmt"
	"net/http"
)

// AuthError indicates the credential exchange against /auth failed.
// The session keeps no token after an AuthError; every subsequent request
// retries the exchange.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("pluggy authentication failed with status %d: %s", e.Status, e.Body)
}

// RequestError indicates a non-2xx response from the Pluggy API.
type RequestError struct {
	Status int
	Path   string
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("pluggy request %s failed with status %d: %s", e.Path, e.Status, e.Body)
}

// NotFound reports whether the error is a 404 (unknown item or transaction).
func (e *RequestError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// ValidationError indicates a 2xx response whose payload did not match the
// expected schema. This implies an API contract change and is surfaced
// rather than retried.
type ValidationError struct {
	Path string
	Body string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pluggy response for %s failed validation: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

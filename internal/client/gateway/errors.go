// Copyright (c) 2026 GenrA. All rights reserved.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the API.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeRateLimited  = "RATE_LIMITED"
	CodeSuspended    = "ACCOUNT_SUSPENDED"
	CodeInternal     = "INTERNAL_ERROR"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

func (err *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", err.Code, err.Status, err.Message)
}

// AsAPIError unwraps err into an [*APIError].
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func hasCode(err error, code string) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}

// IsSuspended reports whether err is the banned-account error.
func IsSuspended(err error) bool { return hasCode(err, CodeSuspended) }

// IsNotFound reports a 404.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports a 401.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

/*
Retryable reports whether repeating the request could succeed.

Transport failures, including an HTTP client timeout, 5xx, 408 and 429 are
retryable. Other API errors and cancellation are not. Callers holding a
context with a deadline check ctx.Err themselves.
*/
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	apiErr, ok := AsAPIError(err)
	if !ok {
		return true
	}
	switch {
	case apiErr.Status >= http.StatusInternalServerError:
		return true
	case apiErr.Status == http.StatusRequestTimeout, apiErr.Status == http.StatusTooManyRequests:
		return true
	}
	return false
}

// Package apierror is the closed set of error kinds a request can fail with.
//
// Every *Error knows its HTTP status, whether it should reach the external
// error tracker, and which counter (if any) to bump. The client only ever
// sees the Envelope; Context and the wrapped cause stay server side.
package apierror

import (
	"errors"
	"net/http"

	"github.com/go-stack/stack"
)

type Kind uint8

const (
	// KindInternal is the zero value so an unset Kind is never treated as
	// a user error.
	KindInternal Kind = iota
	KindUserInput
	KindResourceExhausted
	KindDatabase
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindUserInput:
		return "user_input"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindDatabase:
		return "database"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

// Severity is declared by a downstream dependency about its own failure.
type Severity uint8

const (
	SeverityFatal Severity = iota
	SeverityUser
	SeverityTransient
)

type Location string

const (
	LocationHeader   Location = "header"
	LocationURL      Location = "url"
	LocationBody     Location = "body"
	LocationInternal Location = "internal"
)

type Error struct {
	Kind     Kind
	Severity Severity

	// Client-visible.
	Status      string
	Location    Location
	Name        string
	Description string
	HTTPStatus  int

	// Server-side only.
	Context string
	Label   string
	Err     error

	stack stack.CallStack
}

func (e *Error) Error() string {
	msg := e.Context
	if msg == "" {
		msg = e.Description
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsReportable reports whether the error should reach the error tracker.
func (e *Error) IsReportable() bool {
	switch e.Kind {
	case KindUserInput:
		return false
	case KindDependency:
		return e.Severity != SeverityUser
	default:
		return true
	}
}

// MetricLabel is the counter incremented for every occurrence, or "".
func (e *Error) MetricLabel() string {
	return e.Label
}

// Stack is the call stack captured where the error was built, or nil.
func (e *Error) Stack() stack.CallStack {
	return e.stack
}

// Reportable is implemented by errors that decide their own reporting.
type Reportable interface {
	error
	IsReportable() bool
	MetricLabel() string
}

var _ Reportable = (*Error)(nil)

// Classify returns the innermost *Error in err's chain. Errors carrying no
// classification are wrapped as an internal error so they are still reported.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var found *Error
	for e := err; e != nil; e = errors.Unwrap(e) {
		if ae, ok := e.(*Error); ok {
			found = ae
		}
	}
	if found != nil {
		return found
	}
	return Unclassified(err)
}

// StatusCode is the HTTP status for err; see Classify.
func StatusCode(err error) int {
	return Classify(err).HTTPStatus
}

func withStack(e *Error) *Error {
	// 0 = withStack, 1 = constructor, 2 = constructor's caller
	e.stack = stack.Trace().TrimBelow(stack.Caller(2)).TrimRuntime()
	return e
}

func userError(status string, loc Location, description, context, label string) *Error {
	return &Error{
		Kind:        KindUserInput,
		Status:      status,
		Location:    loc,
		Description: description,
		HTTPStatus:  http.StatusUnauthorized,
		Context:     context,
		Label:       label,
	}
}

func InvalidGeneration() *Error {
	return userError("invalid-generation", LocationBody, "Unauthorized", "Invalid generation", "request.error.invalid_generation")
}

func InvalidKeysChangedAt() *Error {
	return userError("invalid-keysChangedAt", LocationBody, "Unauthorized", "Invalid keys_changed_at", "request.error.invalid_keys_changed_at")
}

func InvalidKeyID(description string) *Error {
	return userError("invalid-key-id", LocationHeader, description, description, "request.error.invalid_key_id")
}

func InvalidCredentials(description string) *Error {
	return userError("invalid-credentials", LocationBody, description, description, "request.error.invalid_credentials")
}

func InvalidClientState(description string) *Error {
	e := userError("invalid-client-state", LocationHeader, description, description, "request.error.invalid_client_state")
	e.Name = "X-Client-State"
	return e
}

func Unauthorized(description string) *Error {
	return userError("error", LocationBody, description, description, "request.error.unauthorized")
}

// BadRequest is a malformed request; name is the offending field or header.
func BadRequest(loc Location, name, description string) *Error {
	e := userError("error", loc, description, description, "request.error.invalid")
	e.Name = name
	e.HTTPStatus = http.StatusBadRequest
	return e
}

func Unsupported(description, name string) *Error {
	e := userError("error", LocationURL, description, description, "request.error.unsupported")
	e.Name = name
	e.HTTPStatus = http.StatusNotFound
	return e
}

func QuotaExceeded() *Error {
	e := userError("quota-exceeded", LocationBody, "Over quota", "Over quota", "storage.quota.at_limit")
	e.Name = "quota"
	e.HTTPStatus = http.StatusForbidden
	return e
}

func Internal(cause error) *Error {
	return withStack(&Error{
		Kind:        KindInternal,
		Status:      "internal-error",
		Location:    LocationInternal,
		Description: "Server error",
		HTTPStatus:  http.StatusInternalServerError,
		Context:     "Internal error",
		Err:         cause,
	})
}

// Unclassified wraps an error that carries no kind of its own.
func Unclassified(cause error) *Error {
	e := withStack(&Error{
		Kind:        KindInternal,
		Status:      "internal-error",
		Location:    LocationInternal,
		Description: "Server error",
		HTTPStatus:  http.StatusInternalServerError,
		Context:     "Unclassified error",
		Label:       "error.unclassified",
		Err:         cause,
	})
	return e
}

// Canceled is returned when a blocking backend call is abandoned.
func Canceled(cause error) *Error {
	return withStack(&Error{
		Kind:        KindInternal,
		Status:      "internal-error",
		Location:    LocationInternal,
		Description: "Server error",
		HTTPStatus:  http.StatusInternalServerError,
		Context:     "Blocking operation canceled",
		Label:       "storage.blocking.canceled",
		Err:         cause,
	})
}

func Database(cause error) *Error {
	return withStack(&Error{
		Kind:        KindDatabase,
		Status:      "error",
		Location:    LocationHeader,
		Description: "Database error",
		HTTPStatus:  http.StatusInternalServerError,
		Context:     "Database error",
		Err:         cause,
	})
}

func exhausted(context, label string, cause error) *Error {
	return &Error{
		Kind:        KindResourceExhausted,
		Status:      "error",
		Location:    LocationBody,
		Description: "Resource is not available",
		HTTPStatus:  http.StatusServiceUnavailable,
		Context:     context,
		Label:       label,
		Err:         cause,
	}
}

func PoolExhausted(cause error) *Error {
	return withStack(exhausted("Connection pool exhausted", "storage.pool.exhausted", cause))
}

func PoolTimeout(cause error) *Error {
	return withStack(exhausted("Connection pool timeout", "storage.pool.timeout", cause))
}

func ResourceUnavailable(cause error) *Error {
	return withStack(exhausted("Resource is not available", "storage.backend.unavailable", cause))
}

// Dependency classifies a failure reported by a downstream service according
// to the severity that service declared.
func Dependency(name string, severity Severity, cause error) *Error {
	e := &Error{
		Kind:     KindDependency,
		Severity: severity,
		Status:   "error",
		Context:  name + " failed",
		Err:      cause,
	}
	switch severity {
	case SeverityUser:
		e.Status = "invalid-credentials"
		e.Location = LocationBody
		e.Description = "Unauthorized"
		e.HTTPStatus = http.StatusUnauthorized
		e.Label = "dependency." + name + ".rejected"
	case SeverityTransient:
		e.Location = LocationBody
		e.Description = "Resource is not available"
		e.HTTPStatus = http.StatusServiceUnavailable
		e.Label = "dependency." + name + ".unavailable"
	default:
		e.Status = "internal-error"
		e.Location = LocationInternal
		e.Description = "Server error"
		e.HTTPStatus = http.StatusInternalServerError
	}
	return withStack(e)
}

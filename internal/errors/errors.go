// Package errors classifies application failures and maps them onto HTTP
// status codes.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a ServiceError.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindValidation  Kind = "validation"
	KindDatabase    Kind = "database"
	KindTemplate    Kind = "template"
	KindSerialize   Kind = "serialize"
	KindRateLimited Kind = "rate_limited"
	KindInternal    Kind = "internal"
)

// ServiceError is the error type handlers know how to render.
type ServiceError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NotFound reports a missing resource by numeric id.
func NotFound(resource string, id int64) *ServiceError {
	return NotFoundID(resource, strconv.FormatInt(id, 10))
}

// NotFoundID reports a missing resource by the id as it was requested, for
// ids that do not fit the numeric type.
func NotFoundID(resource, id string) *ServiceError {
	name := strings.ToLower(resource)
	title := name
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}
	return &ServiceError{
		Kind: KindNotFound,
		Message: fmt.Sprintf("%s not found with id: %s. Please ensure the ID is correct and the %s exists in the database.",
			title, id, name),
		HTTPStatus: http.StatusNotFound,
	}
}

// Validation wraps a form validation failure.
func Validation(err error) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: "validation failed", HTTPStatus: http.StatusBadRequest, Err: err}
}

// Database wraps a store failure.
func Database(err error) *ServiceError {
	return &ServiceError{Kind: KindDatabase, Message: fmt.Sprintf("Database error: %v", err), HTTPStatus: http.StatusInternalServerError, Err: err}
}

// Template wraps a rendering failure.
func Template(err error) *ServiceError {
	return &ServiceError{Kind: KindTemplate, Message: fmt.Sprintf("Template error: %v", err), HTTPStatus: http.StatusInternalServerError, Err: err}
}

// Serialize wraps an XML or JSON encoding failure.
func Serialize(err error) *ServiceError {
	return &ServiceError{Kind: KindSerialize, Message: fmt.Sprintf("Serialize error: %v", err), HTTPStatus: http.StatusInternalServerError, Err: err}
}

// Internal reports an unexpected condition.
func Internal(msg string) *ServiceError {
	return &ServiceError{Kind: KindInternal, Message: msg, HTTPStatus: http.StatusInternalServerError}
}

// RateLimitExceeded reports a throttled client.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return &ServiceError{
		Kind:       KindRateLimited,
		Message:    fmt.Sprintf("rate limit exceeded: %d requests per %s", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// HTTPStatus returns the status code err should be answered with.
func HTTPStatus(err error) int {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) && svcErr.HTTPStatus != 0 {
		return svcErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Is reports whether err is a ServiceError of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Response is the JSON envelope written for failed requests.
type Response struct {
	Message   string `json:"message"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

// NewResponse builds an envelope stamped with the current local time.
func NewResponse(message, path string) Response {
	return Response{Message: message, Path: path, Timestamp: time.Now().Format(time.RFC3339)}
}

// WriteJSON answers the request with the JSON envelope for err.
func WriteJSON(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("App-Error", "true")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(NewResponse(err.Error(), r.URL.RequestURI()))
}

// Package apperr provides the typed errors shared by the store, the services
// and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is implemented by every application error.
type Error interface {
	error
	HTTPStatus() int
	Code() string
}

// Error codes returned to API clients.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeConflict       = "CONFLICT"
	CodeConfiguration  = "CONFIGURATION_ERROR"
	CodeBatchUpdate    = "BATCH_UPDATE_FAILED"
	CodeInvalidState   = "INVALID_STATE_TRANSITION"
	CodeInfrastructure = "INFRASTRUCTURE_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
	CodeBadRequest     = "BAD_REQUEST"
)

// BaseError is the common implementation of Error.
type BaseError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"code"`
}

func (e *BaseError) Error() string { return e.Message }

func (e *BaseError) HTTPStatus() int { return e.StatusCode }

func (e *BaseError) Code() string { return e.ErrorCode }

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	BaseError
	Resource string
	ID       any
}

func NewNotFoundError(resource string, id any) *NotFoundError {
	msg := fmt.Sprintf("%s not found", resource)
	if id != nil {
		msg = fmt.Sprintf("%s %v not found", resource, id)
	}
	return &NotFoundError{
		BaseError: BaseError{Message: msg, StatusCode: http.StatusNotFound, ErrorCode: CodeNotFound},
		Resource:  resource,
		ID:        id,
	}
}

// ValidationError carries per-field violation codes.
type ValidationError struct {
	BaseError
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return &ValidationError{
		BaseError: BaseError{
			Message:    "validation failed: " + strings.Join(parts, ", "),
			StatusCode: http.StatusBadRequest,
			ErrorCode:  CodeValidation,
		},
		Fields: fields,
	}
}

// NewFieldError is a shortcut for a single violated field.
func NewFieldError(field, code string) *ValidationError {
	return NewValidationError(map[string]string{field: code})
}

// ConflictError covers duplicate unique keys and records that are still in use.
type ConflictError struct {
	BaseError
	Resource string
}

func NewConflictError(resource, message string) *ConflictError {
	if message == "" {
		message = fmt.Sprintf("%s already exists", resource)
	}
	return &ConflictError{
		BaseError: BaseError{Message: message, StatusCode: http.StatusConflict, ErrorCode: CodeConflict},
		Resource:  resource,
	}
}

// ConfigurationError reports a settings category/key that does not exist.
type ConfigurationError struct {
	BaseError
	Category string
	Key      string
}

func NewConfigurationError(category, key string) *ConfigurationError {
	return &ConfigurationError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("setting %s.%s not found", category, key),
			StatusCode: http.StatusNotFound,
			ErrorCode:  CodeConfiguration,
		},
		Category: category,
		Key:      key,
	}
}

// BatchUpdateError lists the keys that failed in a rolled back multi-key update.
type BatchUpdateError struct {
	BaseError
	Category string
	Failed   map[string]string
}

func NewBatchUpdateError(category string, failed map[string]string) *BatchUpdateError {
	keys := make([]string, 0, len(failed))
	for k := range failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &BatchUpdateError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("update of %s rolled back, failed keys: %s", category, strings.Join(keys, ", ")),
			StatusCode: http.StatusBadRequest,
			ErrorCode:  CodeBatchUpdate,
		},
		Category: category,
		Failed:   failed,
	}
}

// FailedKeys returns the failed keys in sorted order.
func (e *BatchUpdateError) FailedKeys() []string {
	keys := make([]string, 0, len(e.Failed))
	for k := range e.Failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InvalidStateTransitionError reports a forbidden lifecycle change.
type InvalidStateTransitionError struct {
	BaseError
	From string
	To   string
}

func NewInvalidStateTransitionError(resource, from, to string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s cannot change status from %q to %q", resource, from, to),
			StatusCode: http.StatusConflict,
			ErrorCode:  CodeInvalidState,
		},
		From: from,
		To:   to,
	}
}

// InfrastructureError wraps a failure of the underlying store.
type InfrastructureError struct {
	BaseError
	Err error
}

func NewInfrastructureError(op string, err error) *InfrastructureError {
	return &InfrastructureError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s: storage unavailable", op),
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  CodeInfrastructure,
		},
		Err: err,
	}
}

func (e *InfrastructureError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// BadRequestError reports malformed input that never reached validation.
type BadRequestError struct {
	BaseError
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{
		BaseError: BaseError{Message: message, StatusCode: http.StatusBadRequest, ErrorCode: CodeBadRequest},
	}
}

// As returns the application error inside err, if any.
func As(err error) (Error, bool) {
	var ae Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HasCode reports whether err is an application error with the given code.
func HasCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code() == code
}

func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

func IsValidation(err error) bool { return HasCode(err, CodeValidation) }

func IsConflict(err error) bool { return HasCode(err, CodeConflict) }

func IsInvalidState(err error) bool { return HasCode(err, CodeInvalidState) }

// ToHTTP converts any error to a status code and response body fields.
func ToHTTP(err error) (int, string, string) {
	if err == nil {
		return http.StatusOK, "", ""
	}
	var ie *InfrastructureError
	if errors.As(err, &ie) {
		return ie.StatusCode, ie.ErrorCode, ie.Message
	}
	if ae, ok := As(err); ok {
		return ae.HTTPStatus(), ae.Code(), ae.Error()
	}
	return http.StatusInternalServerError, CodeInternal, "internal server error"
}

package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a failure category. The set is closed; callers switch on
// Kind instead of inspecting messages.
type Kind string

const (
	KindNotFound       Kind = "NOT_FOUND"
	KindAuthentication Kind = "AUTHENTICATION_FAILED"
	KindAuthorization  Kind = "FORBIDDEN"
	KindRateLimit      Kind = "RATE_LIMITED"
	KindAPI            Kind = "API_ERROR"
	KindProtocol       Kind = "PROTOCOL_ERROR"
	KindValidation     Kind = "VALIDATION_FAILED"
	KindInternal       Kind = "INTERNAL_ERROR"
)

// Sentinels for errors.Is comparisons. Only the Kind is compared.
var (
	ErrNotFound       = &DomainError{Kind: KindNotFound}
	ErrAuthentication = &DomainError{Kind: KindAuthentication}
	ErrAuthorization  = &DomainError{Kind: KindAuthorization}
	ErrRateLimit      = &DomainError{Kind: KindRateLimit}
	ErrAPI            = &DomainError{Kind: KindAPI}
	ErrProtocol       = &DomainError{Kind: KindProtocol}
	ErrValidation     = &DomainError{Kind: KindValidation}
)

// DomainError standardizes application errors.
type DomainError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same Kind.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind Kind, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(KindValidation, message, http.StatusBadRequest, details)
}

// NewNotFound reports that resource identified by id does not exist.
func NewNotFound(resource, id string) error {
	return NewDomainError(KindNotFound,
		fmt.Sprintf("%s %s not found", resource, id),
		http.StatusNotFound,
		map[string]any{"id": id})
}

func NewAuthentication(message string) error {
	if message == "" {
		message = "authentication failed, check the personal access token"
	}
	return NewDomainError(KindAuthentication, message, http.StatusUnauthorized, nil)
}

func NewAuthorization(message string) error {
	if message == "" {
		message = "access forbidden, check your Jira/Tempo permissions"
	}
	return NewDomainError(KindAuthorization, message, http.StatusForbidden, nil)
}

func NewRateLimit() error {
	return NewDomainError(KindRateLimit, "rate limit exceeded, try again later", http.StatusTooManyRequests, nil)
}

// NewAPIError wraps a structured error message reported by the remote API.
func NewAPIError(status int, message string) error {
	return &DomainError{
		Kind:       KindAPI,
		Message:    "tempo api error: " + message,
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"status": status},
	}
}

// NewProtocolError reports a response whose shape violates the API contract.
func NewProtocolError(message string) error {
	return NewDomainError(KindProtocol, message, http.StatusBadGateway, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Kind:       KindInternal,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Kind:       KindInternal,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

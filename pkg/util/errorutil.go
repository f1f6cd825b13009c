package util

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures seen by the client layer.
type ErrorKind string

const (
	KindNetwork      ErrorKind = "NETWORK"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindValidation   ErrorKind = "VALIDATION"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindUnknown      ErrorKind = "UNKNOWN"
)

// APIError standardizes failures coming back from the backend or the transport.
type APIError struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Details    map[string]string
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError constructs an APIError.
func NewAPIError(kind ErrorKind, message string, status int, details map[string]string) *APIError {
	return &APIError{Kind: kind, Message: message, HTTPStatus: status, Details: details}
}

// NewNetworkError wraps a transport failure where no response was received.
func NewNetworkError(err error) error {
	return &APIError{Kind: KindNetwork, Err: err}
}

func NewUnauthorized(message string) error {
	return NewAPIError(KindUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewValidationError(message string, details map[string]string) error {
	return NewAPIError(KindValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(message string) error {
	return NewAPIError(KindNotFound, message, http.StatusNotFound, nil)
}

// FromStatus classifies an HTTP error response.
func FromStatus(status int, message string, details map[string]string) *APIError {
	kind := KindUnknown
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusNotFound:
		kind = KindNotFound
	case (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity) && len(details) > 0:
		kind = KindValidation
	}
	return NewAPIError(kind, message, status, details)
}

// ToAPIError converts generic errors to APIError.
func ToAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Kind: KindUnknown, Err: err}
}

// KindOf returns the classification of err, KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return ToAPIError(err).Kind
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// StatusCode maps an error to the status the console should answer with.
func StatusCode(err error) int {
	apiErr := ToAPIError(err)
	if apiErr == nil {
		return http.StatusOK
	}
	if apiErr.HTTPStatus >= 400 {
		return apiErr.HTTPStatus
	}
	switch apiErr.Kind {
	case KindNetwork:
		return http.StatusBadGateway
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Package apperr defines the single error shape returned to API clients.
// Handlers and middleware return *Error values; the echo error handler in
// package handler renders them into the response envelope.  Any other error
// reaching the boundary is reduced to a generic internal error.
package apperr

import (
	"fmt"
	"net/http"
)

// Error codes exposed to clients.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeNotSignedIn         = "NOT_SIGNEDIN"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeNotAllowedAccess    = "NOT_ALLOWED_ACCESS"
	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeMembershipNotFound  = "MEMBERSHIP_NOT_FOUND"
	CodeResourceExists      = "RESOURCE_EXISTS"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// Detail is one entry of the errors array: {code, message, field?}.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error is an API error carrying its HTTP status and one or more details.
type Error struct {
	Status  int
	Details []Detail
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return http.StatusText(e.Status)
	}
	d := e.Details[0]
	if d.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Field)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// New builds an error with a single detail.
func New(status int, code, message, field string) *Error {
	return &Error{Status: status, Details: []Detail{{Code: code, Message: message, Field: field}}}
}

// Validation builds a 400 error with one INVALID_INPUT entry per field.
func Validation(details ...Detail) *Error {
	for i := range details {
		if details[i].Code == "" {
			details[i].Code = CodeInvalidInput
		}
	}
	return &Error{Status: http.StatusBadRequest, Details: details}
}

// InvalidInput is a single-field validation error.
func InvalidInput(field, message string) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, message, field)
}

func NotSignedIn() *Error {
	return New(http.StatusUnauthorized, CodeNotSignedIn, "You need to sign in to proceed.", "")
}

func InvalidToken() *Error {
	return New(http.StatusUnauthorized, CodeInvalidToken, "The access token is invalid or has expired.", "")
}

func InvalidCredentials() *Error {
	return New(http.StatusUnauthorized, CodeInvalidCredentials, "The credentials you provided are invalid.", "")
}

func NotAllowed() *Error {
	return New(http.StatusForbidden, CodeNotAllowedAccess, "You are not authorized to access this resource.", "")
}

// NotFound reports a referenced entity that does not exist.
func NotFound(code, field, message string) *Error {
	return New(http.StatusNotFound, code, message, field)
}

// Exists reports a uniqueness conflict.  status is 400 or 409 depending on
// the endpoint.
func Exists(status int, field, message string) *Error {
	return New(status, CodeResourceExists, message, field)
}

func Internal() *Error {
	return New(http.StatusInternalServerError, CodeInternalServerError, "Something went wrong.", "")
}

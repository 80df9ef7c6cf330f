package services

import (
	"fmt"
	"net/http"
)

type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}
func (e *NotFoundError) HTTPStatus() int       { return http.StatusNotFound }
func (e *NotFoundError) ErrorCode() string     { return "not_found" }
func (e *NotFoundError) PublicMessage() string { return e.Resource + " not found" }

// AuthorizationError is returned when the caller is authenticated but does not
// own the record it tried to change.
type AuthorizationError struct {
	Action   string
	Resource string
	ID       uint
	CallerID uint
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %d may not %s %s %d", e.CallerID, e.Action, e.Resource, e.ID)
}
func (e *AuthorizationError) HTTPStatus() int   { return http.StatusForbidden }
func (e *AuthorizationError) ErrorCode() string { return "forbidden" }
func (e *AuthorizationError) PublicMessage() string {
	return fmt.Sprintf("only the owner may %s this %s", e.Action, e.Resource)
}

// AuthenticationError covers bad credentials and unusable or revoked tokens.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return "authentication failed: " + e.Reason
	}
	return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
}
func (e *AuthenticationError) Unwrap() error         { return e.Err }
func (e *AuthenticationError) HTTPStatus() int       { return http.StatusUnauthorized }
func (e *AuthenticationError) ErrorCode() string     { return "unauthorized" }
func (e *AuthenticationError) PublicMessage() string { return e.Reason }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
func (e *ValidationError) HTTPStatus() int       { return http.StatusBadRequest }
func (e *ValidationError) ErrorCode() string     { return "invalid_request" }
func (e *ValidationError) PublicMessage() string { return e.Error() }

type ConflictError struct {
	Field  string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Field, e.Reason)
}
func (e *ConflictError) HTTPStatus() int       { return http.StatusConflict }
func (e *ConflictError) ErrorCode() string     { return "conflict" }
func (e *ConflictError) PublicMessage() string { return e.Reason }

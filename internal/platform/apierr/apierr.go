package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	// Message is the client-safe summary. When empty, Err's text is used.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// PublicMessage is what the HTTP boundary is allowed to show.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Classified is implemented by domain errors that know their own HTTP mapping.
type Classified interface {
	error
	HTTPStatus() int
	ErrorCode() string
	PublicMessage() string
}

// From maps any error onto an *Error. Classified errors keep their status and
// safe message; everything else becomes an opaque 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var ce Classified
	if errors.As(err, &ce) {
		return &Error{
			Status:  ce.HTTPStatus(),
			Code:    ce.ErrorCode(),
			Message: ce.PublicMessage(),
			Err:     err,
		}
	}
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "internal server error",
		Err:     err,
	}
}

package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

type teapotError struct{ cause error }

func (e *teapotError) Error() string         { return "teapot: " + e.cause.Error() }
func (e *teapotError) HTTPStatus() int       { return http.StatusTeapot }
func (e *teapotError) ErrorCode() string     { return "teapot" }
func (e *teapotError) PublicMessage() string { return "short and stout" }

func TestFromClassifiedKeepsSafeMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &teapotError{cause: errors.New("db password=hunter2")})

	got := From(err)
	if got.Status != http.StatusTeapot {
		t.Fatalf("status: want=%d got=%d", http.StatusTeapot, got.Status)
	}
	if got.Code != "teapot" {
		t.Fatalf("code: want=teapot got=%q", got.Code)
	}
	if got.PublicMessage() != "short and stout" {
		t.Fatalf("public message leaked cause: %q", got.PublicMessage())
	}
	if !errors.Is(got, err) {
		t.Fatalf("expected original error to stay reachable via Unwrap")
	}
}

func TestFromUnknownIsOpaque500(t *testing.T) {
	got := From(errors.New("pq: connection refused"))
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", got.Status)
	}
	if got.PublicMessage() != "internal server error" {
		t.Fatalf("unexpected public message: %q", got.PublicMessage())
	}
}

func TestFromPassesThroughAPIError(t *testing.T) {
	src := New(http.StatusBadRequest, "invalid_request", errors.New("bad json"))
	if got := From(fmt.Errorf("ctx: %w", src)); got != src {
		t.Fatalf("expected the same *Error back")
	}
	if From(nil) != nil {
		t.Fatalf("From(nil) should be nil")
	}
}

package generation

import (
	"fmt"
	"net/http"
)

// ValidationError rejects a request before any external call is made.
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

// ExtractionError reports that labels could not be obtained for one image.
// Hard is set when the reference itself is unusable or the run was cancelled;
// those abort the pipeline under every policy.
type ExtractionError struct {
	Index    int
	ImageRef string
	Hard     bool
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("label extraction failed for image %d (%q): %v", e.Index+1, e.ImageRef, e.Err)
}
func (e *ExtractionError) Unwrap() error     { return e.Err }
func (e *ExtractionError) HTTPStatus() int   { return http.StatusBadGateway }
func (e *ExtractionError) ErrorCode() string { return "extraction_failed" }
func (e *ExtractionError) PublicMessage() string {
	if e.Hard {
		return fmt.Sprintf("image %d could not be analyzed", e.Index+1)
	}
	return "image analysis service unavailable"
}

// GenerationError covers text-service failures and unusable responses.
// No record is ever persisted after one.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "narrative generation failed: " + e.Reason
	}
	return fmt.Sprintf("narrative generation failed: %s: %v", e.Reason, e.Err)
}
func (e *GenerationError) Unwrap() error         { return e.Err }
func (e *GenerationError) HTTPStatus() int       { return http.StatusBadGateway }
func (e *GenerationError) ErrorCode() string     { return "generation_failed" }
func (e *GenerationError) PublicMessage() string { return "content generation failed" }

// PersistenceError means content was generated but could not be saved.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting generated content failed: %v", e.Err)
}
func (e *PersistenceError) Unwrap() error     { return e.Err }
func (e *PersistenceError) HTTPStatus() int   { return http.StatusInternalServerError }
func (e *PersistenceError) ErrorCode() string { return "persistence_failed" }
func (e *PersistenceError) PublicMessage() string {
	return "content was generated but could not be saved"
}

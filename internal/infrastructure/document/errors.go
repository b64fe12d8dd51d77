// Package document renders signed proposal PDFs from HTML templates using a
// headless browser.
package document

import "fmt"

// Render error codes
const (
	ErrCodeInvalidTemplate = "INVALID_TEMPLATE"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeRenderTimeout   = "RENDER_TIMEOUT"
)

// RenderError describes a failed document render
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

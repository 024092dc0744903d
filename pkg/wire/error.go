package wire

import "fmt"

// Error type discriminators surfaced in ErrorResponse.Type. Every
// user-visible failure states what failed and what to do about it; raw
// internal error text never reaches the client.
const (
	ErrTypeValidation      = "validation_error"
	ErrTypeAdapter         = "adapter_error"
	ErrTypeAuth            = "auth_error"
	ErrTypeUnsupportedMode = "unsupported_mode_error"
	ErrTypeRuntime         = "runtime_error"
)

// ErrorResponse is the standard error body for all non-2xx responses.
type ErrorResponse struct {
	Error  string `json:"error"`
	Type   string `json:"type"`
	Detail string `json:"detail,omitempty"`
}

// ValidationError describes a malformed request body with structured
// field/reason detail.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

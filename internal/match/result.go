// Package match holds the matching core: the exact-match executor for
// complete profiles, the parallel speculative executor for profiles with
// 1-2 missing guessable attributes, and the shared result envelope.
package match

// Status tags a Result. Tri-state: a no-op is not an error.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
	StatusNoChange Status = "no_change"
)

// Result is the envelope every public operation returns. Message is safe to
// render directly to the end user; internal detail stays in logs.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Success builds a success envelope.
func Success(message string, data map[string]any) Result {
	return Result{Status: StatusSuccess, Message: message, Data: data}
}

// NoChange builds a no-op envelope, distinct from an error.
func NoChange(message string) Result {
	return Result{Status: StatusNoChange, Message: message}
}

// ErrorResult wraps an executor failure into an envelope. The error text is
// user-facing by construction (see errors.go).
func ErrorResult(err error) Result {
	return Result{Status: StatusError, Message: err.Error()}
}

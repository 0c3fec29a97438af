package gemini

import "fmt"

// ErrorKind classifies why a generation produced no usable text.
type ErrorKind string

const (
	// KindTimeout means the call exceeded its deadline.
	KindTimeout ErrorKind = "timeout"
	// KindBlocked means a safety filter rejected the prompt or response.
	KindBlocked ErrorKind = "blocked"
	// KindAPI covers transport and server-side API failures.
	KindAPI ErrorKind = "api"
	// KindEmpty means the model returned no text.
	KindEmpty ErrorKind = "empty"
)

// GenError describes a failed generation in terms handlers can act on.
type GenError struct {
	Kind    ErrorKind
	Message string
}

func (e *GenError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Result is the outcome of a generation call. Exactly one of Text and Err
// is meaningful: a nil Err means Text holds the model output.
type Result struct {
	Text string
	Err  *GenError
}

// Ok reports whether the generation produced usable text.
func (r Result) Ok() bool {
	return r.Err == nil
}

func failure(kind ErrorKind, format string, args ...any) Result {
	return Result{Err: &GenError{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

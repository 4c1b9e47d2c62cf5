package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Routing errors
const (
	// ErrCodeUnroutable indicates a predicate produced a key with no output queue.
	ErrCodeUnroutable ErrorCode = "UNROUTABLE"
	// ErrCodePredicateFailed indicates the classification function returned an error.
	ErrCodePredicateFailed ErrorCode = "PREDICATE_FAILED"
)

// Wiring errors
const (
	// ErrCodeInvalidConfig indicates an operator or driver was built with bad arguments.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInvalidTopology indicates nodes are wired into an unusable graph.
	ErrCodeInvalidTopology ErrorCode = "INVALID_TOPOLOGY"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// fatalCodes halt the node that raised them; stepping it again cannot succeed.
var fatalCodes = map[ErrorCode]bool{
	ErrCodeUnroutable:      true,
	ErrCodeInvalidConfig:   true,
	ErrCodeInvalidTopology: true,
}

// IsFatalCode returns true if the error code leaves the raising node halted.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}

package r

import (
	"fmt"
)

// ProtocolViolationError is the panic value used when a stream breaks its
// contract (e.g. it terminates twice), or when an expectation is asked to
// leave a resolved state. It indicates a programming error, not a test
// failure.
type ProtocolViolationError struct {
	reason   string
	terminal Terminal
	extra    string
}

// Error returns an error message
func (err *ProtocolViolationError) Error() string {
	if err.extra != "" {
		return fmt.Sprintf("protocol violation: %s (%s)", err.reason, err.extra)
	}
	return fmt.Sprintf("protocol violation: %s", err.reason)
}

// KVs returns a metadata map for structured logging
func (err *ProtocolViolationError) KVs() map[string]interface{} {
	acc := map[string]interface{}{
		"violation.reason":   err.reason,
		"violation.terminal": err.terminal.String(),
	}
	if err.extra != "" {
		acc["violation.detail"] = err.extra
	}
	return acc
}

// NewProtocolViolation creates a ProtocolViolationError; it is exported so
// that expectation slots can report double transitions with the same type.
func NewProtocolViolation(reason string, terminal Terminal, detail string) *ProtocolViolationError {
	return &ProtocolViolationError{reason: reason, terminal: terminal, extra: detail}
}

package x

import (
	"fmt"
	"strings"
	"time"

	"github.com/capatazlib/go-streamexpect/internal/r"
)

// ErrKVs is an utility interface used to get key-values out of expectation
// errors
type ErrKVs interface {
	KVs() map[string]interface{}
}

// MismatchError is reported when a value, a group of values or a stream
// error did not satisfy the expectation declared for it.
type MismatchError struct {
	subject  string
	expected interface{}
	actual   interface{}
	diff     string
	err      error
}

// Error returns an error message
func (err *MismatchError) Error() string {
	if err.err != nil {
		return fmt.Sprintf("%s %v did not satisfy expectation: %v", err.subject, err.actual, err.err)
	}
	var buffer strings.Builder
	buffer.WriteString(fmt.Sprintf(
		"%s mismatch: expected %s, got %s",
		err.subject,
		render(err.expected),
		render(err.actual),
	))
	if err.diff != "" {
		buffer.WriteString("\ndiff (-expected +actual):\n")
		buffer.WriteString(err.diff)
	}
	return buffer.String()
}

// Expected returns the value the expectation was declared with, nil for
// predicate based expectations
func (err *MismatchError) Expected() interface{} {
	return err.expected
}

// Actual returns the value observed on the stream
func (err *MismatchError) Actual() interface{} {
	return err.actual
}

// Unwrap returns the error a predicate reported, if any
func (err *MismatchError) Unwrap() error {
	return err.err
}

// KVs returns a metadata map for structured logging
func (err *MismatchError) KVs() map[string]interface{} {
	acc := map[string]interface{}{
		"failure.type":    "AssertionMismatch",
		"failure.subject": err.subject,
		"failure.actual":  fmt.Sprintf("%v", err.actual),
	}
	if err.err != nil {
		acc["failure.predicate.error"] = err.err.Error()
	} else {
		acc["failure.expected"] = fmt.Sprintf("%v", err.expected)
	}
	return acc
}

// render formats a value for failure messages; errors are shown by their
// message rather than by their (usually opaque) structure
func render(v interface{}) string {
	if err, ok := v.(error); ok {
		return fmt.Sprintf("error(%q)", err.Error())
	}
	return fmt.Sprintf("%#v", v)
}

// PrematureTerminationError is reported when a stream terminated before it
// emitted the number of values an expectation required.
type PrematureTerminationError struct {
	want     int
	got      int
	terminal r.Terminal
}

// Error returns an error message
func (err *PrematureTerminationError) Error() string {
	return fmt.Sprintf(
		"stream terminated (%s) after %d value(s), expected at least %d",
		err.terminal,
		err.got,
		err.want,
	)
}

// Terminal returns the terminal state that ended the stream
func (err *PrematureTerminationError) Terminal() r.Terminal {
	return err.terminal
}

// KVs returns a metadata map for structured logging
func (err *PrematureTerminationError) KVs() map[string]interface{} {
	return map[string]interface{}{
		"failure.type":     "PrematureTermination",
		"failure.want":     err.want,
		"failure.got":      err.got,
		"failure.terminal": err.terminal.String(),
	}
}

// WrongCompletionError is reported when a stream terminated with a kind of
// completion different from the expected one.
type WrongCompletionError struct {
	want r.TerminalTag
	got  r.Terminal
}

// Error returns an error message
func (err *WrongCompletionError) Error() string {
	return fmt.Sprintf("expected stream completion %s, got %s", err.want, err.got)
}

// Got returns the terminal state observed on the stream
func (err *WrongCompletionError) Got() r.Terminal {
	return err.got
}

// KVs returns a metadata map for structured logging
func (err *WrongCompletionError) KVs() map[string]interface{} {
	return map[string]interface{}{
		"failure.type": "WrongCompletionKind",
		"failure.want": err.want.String(),
		"failure.got":  err.got.String(),
	}
}

// TimeoutError is reported when the deadline of a wait elapsed before an
// expectation reached a verdict.
type TimeoutError struct {
	after time.Duration
}

// Error returns an error message
func (err *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for expectation", err.after)
}

// After returns the wait duration that elapsed
func (err *TimeoutError) After() time.Duration {
	return err.after
}

// KVs returns a metadata map for structured logging
func (err *TimeoutError) KVs() map[string]interface{} {
	return map[string]interface{}{
		"failure.type":  "Timeout",
		"failure.after": err.after.String(),
	}
}

// PredicatePanicError is reported when the user code of a predicate panicked
// while checking the stream
type PredicatePanicError struct {
	kind  Kind
	value interface{}
}

// Error returns an error message
func (err *PredicatePanicError) Error() string {
	return fmt.Sprintf("%s predicate panicked: %v", err.kind, err.value)
}

// Value returns the value the predicate panicked with
func (err *PredicatePanicError) Value() interface{} {
	return err.value
}

// Unwrap returns the panic value when it is an error
func (err *PredicatePanicError) Unwrap() error {
	if e, ok := err.value.(error); ok {
		return e
	}
	return nil
}

// KVs returns a metadata map for structured logging
func (err *PredicatePanicError) KVs() map[string]interface{} {
	return map[string]interface{}{
		"failure.type":  "PredicatePanic",
		"failure.panic": fmt.Sprintf("%v", err.value),
	}
}

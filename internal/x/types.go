// Package x contains the expectation slots that get attached to a stream, and
// the predicates they evaluate.
package x

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Kind specifies the type of check an expectation slot performs
type Kind uint32

const (
	// ignore zero value of iota
	_ Kind = iota
	// SingleValue checks the first value is equal to an expected value
	SingleValue
	// SingleValuePredicate checks the first value satisfies a predicate
	SingleValuePredicate
	// Collected checks the first N values are equal to an expected sequence
	Collected
	// CollectedPredicate checks the first N values satisfy a predicate
	CollectedPredicate
	// CompletionAny checks the stream terminates
	CompletionAny
	// CompletionKind checks the stream terminates with a given TerminalTag
	CompletionKind
	// CompletionPredicate checks the terminal state satisfies a predicate
	CompletionPredicate
	// SuccessOnly checks the stream finishes without errors
	SuccessOnly
	// FailureAny checks the stream terminates with an error
	FailureAny
	// FailureValue checks the stream terminates with an expected error
	FailureValue
	// FailurePredicate checks the stream error satisfies a predicate
	FailurePredicate
)

// String returns a string representation of the current Kind
func (k Kind) String() string {
	switch k {
	case SingleValue:
		return "SingleValue"
	case SingleValuePredicate:
		return "SingleValuePredicate"
	case Collected:
		return "Collected"
	case CollectedPredicate:
		return "CollectedPredicate"
	case CompletionAny:
		return "CompletionAny"
	case CompletionKind:
		return "CompletionKind"
	case CompletionPredicate:
		return "CompletionPredicate"
	case SuccessOnly:
		return "SuccessOnly"
	case FailureAny:
		return "FailureAny"
	case FailureValue:
		return "FailureValue"
	case FailurePredicate:
		return "FailurePredicate"
	default:
		return "<Unknown>"
	}
}

// Status is the resolution state of a slot. A slot leaves Unresolved exactly
// once.
type Status uint32

const (
	// Unresolved indicates the slot has not reached a verdict yet
	Unresolved Status = iota
	// Passed indicates the stream satisfied the expectation
	Passed
	// Failed indicates the stream proved the expectation false
	Failed
	// TimedOut indicates the deadline elapsed before a verdict
	TimedOut
)

// String returns a string representation of the current Status
func (st Status) String() string {
	switch st {
	case Unresolved:
		return "Unresolved"
	case Passed:
		return "Passed"
	case Failed:
		return "Failed"
	case TimedOut:
		return "TimedOut"
	default:
		return "<Unknown>"
	}
}

// Location is the source code position where an expectation got declared
type Location struct {
	File     string
	Line     int
	Function string
}

// CaptureLocation returns the Location of the caller, skip follows the
// semantics of runtime.Caller (0 is the caller of CaptureLocation)
func CaptureLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{}
	}
	var fnName string
	if fn := runtime.FuncForPC(pc); fn != nil {
		fnName = fn.Name()
	}
	return Location{File: file, Line: line, Function: fnName}
}

// String returns the location as base-name:line
func (loc Location) String() string {
	if loc.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(loc.File), loc.Line)
}

// Outcome is the final report of a single slot
type Outcome struct {
	Kind     Kind
	Status   Status
	Err      error
	Location Location
}

// Passed indicates the slot expectation was satisfied
func (o Outcome) Passed() bool {
	return o.Status == Passed
}

// Message returns the failure message of the outcome, empty when it passed
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// String returns an string representation for the Outcome
func (o Outcome) String() string {
	var buffer strings.Builder
	buffer.WriteString("Outcome{")
	buffer.WriteString(fmt.Sprintf("kind: %s", o.Kind))
	buffer.WriteString(fmt.Sprintf(", status: %s", o.Status))
	buffer.WriteString(fmt.Sprintf(", location: %s", o.Location))
	if o.Err != nil {
		buffer.WriteString(fmt.Sprintf(", err: %v", o.Err))
	}
	buffer.WriteString("}")
	return buffer.String()
}

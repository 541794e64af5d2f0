package expect

import (
	"github.com/capatazlib/go-streamexpect/internal/r"
	"github.com/capatazlib/go-streamexpect/internal/x"
)

// Kind specifies the check an expectation performs
//
// Since: 0.1.0
type Kind = x.Kind

const (
	// SingleValue is the Kind of Value
	SingleValue = x.SingleValue
	// SingleValuePredicate is the Kind of ValueFunc and ValueMatching
	SingleValuePredicate = x.SingleValuePredicate
	// Collected is the Kind of Values
	Collected = x.Collected
	// CollectedPredicate is the Kind of ValuesFunc
	CollectedPredicate = x.CollectedPredicate
	// CompletionAny is the Kind of Completion
	CompletionAny = x.CompletionAny
	// CompletionKind is the Kind of Chain.CompletionKind
	CompletionKind = x.CompletionKind
	// CompletionPredicate is the Kind of CompletionFunc
	CompletionPredicate = x.CompletionPredicate
	// SuccessOnly is the Kind of Success
	SuccessOnly = x.SuccessOnly
	// FailureAny is the Kind of Failure
	FailureAny = x.FailureAny
	// FailureValue is the Kind of Chain.FailureValue
	FailureValue = x.FailureValue
	// FailurePredicate is the Kind of FailureFunc
	FailurePredicate = x.FailurePredicate
)

// Status is the resolution state of an expectation
//
// Since: 0.1.0
type Status = x.Status

const (
	// Unresolved indicates the expectation has no verdict yet
	Unresolved = x.Unresolved
	// Passed indicates the stream satisfied the expectation
	Passed = x.Passed
	// Failed indicates the stream proved the expectation false
	Failed = x.Failed
	// TimedOut indicates the wait deadline elapsed before a verdict
	TimedOut = x.TimedOut
)

// Location is the source code position that declared an expectation
//
// Since: 0.1.0
type Location = x.Location

// Outcome is the final report of an expectation
//
// Since: 0.1.0
type Outcome = x.Outcome

// Terminal is the way a stream terminated, see CompletionFunc
//
// Since: 0.1.0
type Terminal = r.Terminal

// TerminalTag differentiates a stream that finished from one that failed
//
// Since: 0.1.0
type TerminalTag = r.TerminalTag

const (
	// Finished is the TerminalTag of a stream that completed without errors
	Finished = r.Finished
	// Errored is the TerminalTag of a stream that completed with an error
	Errored = r.Failed
)

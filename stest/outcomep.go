package stest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/capatazlib/go-streamexpect/expect"
)

////////////////////////////////////////////////////////////////////////////////

// OutcomeP represents a predicate function that allows us to assert
// properties of an Outcome reported by an expectation chain
type OutcomeP interface {

	// Call will execute the logic of this outcome predicate
	Call(expect.Outcome) bool

	// Returns an string representation of this outcome predicate (for
	// debugging purposes)
	String() string
}

// KindP is a predicate that asserts the Kind of the expectation that reported
// the outcome
type KindP struct {
	kind expect.Kind
}

// Call will execute predicate that checks the kind of the outcome
func (p KindP) Call(o expect.Outcome) bool {
	return o.Kind == p.kind
}

func (p KindP) String() string {
	return fmt.Sprintf("kind == %s", p.kind)
}

// StatusP is a predicate that asserts the Status of an outcome
type StatusP struct {
	status expect.Status
}

// Call will execute predicate that checks the status of the outcome
func (p StatusP) Call(o expect.Outcome) bool {
	return o.Status == p.status
}

func (p StatusP) String() string {
	return fmt.Sprintf("status == %s", p.status)
}

// MessageP is a predicate that asserts the failure message of an outcome
// contains a given string
type MessageP struct {
	contains string
}

// Call will execute predicate that checks the message of the outcome
func (p MessageP) Call(o expect.Outcome) bool {
	return strings.Contains(o.Message(), p.contains)
}

func (p MessageP) String() string {
	return fmt.Sprintf("message contains %q", p.contains)
}

// ErrorTypeP is a predicate that asserts the error of an outcome is (or
// wraps) an error of a given type
type ErrorTypeP struct {
	name string
	as   func(error) bool
}

// Call will execute predicate that checks the error type of the outcome
func (p ErrorTypeP) Call(o expect.Outcome) bool {
	return o.Err != nil && p.as(o.Err)
}

func (p ErrorTypeP) String() string {
	return fmt.Sprintf("err is %s", p.name)
}

func errorTypeP[E error](name string) ErrorTypeP {
	return ErrorTypeP{
		name: name,
		as: func(err error) bool {
			var target E
			return errors.As(err, &target)
		},
	}
}

// AndP is a predicate that builds the conjunction of a group OutcomeP
// predicates (e.g. join OutcomeP predicates with &&)
type AndP struct {
	preds []OutcomeP
}

// Call will try and verify that all it's grouped predicates return true, if any
// returns false, this predicate function will return false
func (p AndP) Call(o expect.Outcome) bool {
	for _, pred := range p.preds {
		if !pred.Call(o) {
			return false
		}
	}
	return true
}

func (p AndP) String() string {
	acc := make([]string, 0, len(p.preds))
	for _, pred := range p.preds {
		acc = append(acc, pred.String())
	}
	return strings.Join(acc, " && ")
}

// And joins the given predicates
func And(preds ...OutcomeP) OutcomeP {
	return AndP{preds: preds}
}

// Passed is a predicate to assert an expectation of the given kind passed
func Passed(kind expect.Kind) OutcomeP {
	return AndP{
		preds: []OutcomeP{
			KindP{kind: kind},
			StatusP{status: expect.Passed},
		},
	}
}

// FailedWith is a predicate to assert an expectation of the given kind failed
// with a message that contains the given string
func FailedWith(kind expect.Kind, contains string) OutcomeP {
	return AndP{
		preds: []OutcomeP{
			KindP{kind: kind},
			StatusP{status: expect.Failed},
			MessageP{contains: contains},
		},
	}
}

// Mismatch is a predicate to assert an expectation of the given kind failed
// because of the values it observed
func Mismatch(kind expect.Kind) OutcomeP {
	return AndP{
		preds: []OutcomeP{
			KindP{kind: kind},
			StatusP{status: expect.Failed},
			errorTypeP[*expect.MismatchError]("MismatchError"),
		},
	}
}

// Premature is a predicate to assert an expectation of the given kind failed
// because the stream terminated too early
func Premature(kind expect.Kind) OutcomeP {
	return AndP{
		preds: []OutcomeP{
			KindP{kind: kind},
			StatusP{status: expect.Failed},
			errorTypeP[*expect.PrematureTerminationError]("PrematureTerminationError"),
		},
	}
}

// WrongCompletion is a predicate to assert an expectation of the given kind
// failed because the stream terminated the other way
func WrongCompletion(kind expect.Kind) OutcomeP {
	return AndP{
		preds: []OutcomeP{
			KindP{kind: kind},
			StatusP{status: expect.Failed},
			errorTypeP[*expect.WrongCompletionError]("WrongCompletionError"),
		},
	}
}

// TimedOut is a predicate to assert an expectation of the given kind did not
// resolve before the wait deadline
func TimedOut(kind expect.Kind) OutcomeP {
	return AndP{
		preds: []OutcomeP{
			KindP{kind: kind},
			StatusP{status: expect.TimedOut},
			errorTypeP[*expect.TimeoutError]("TimeoutError"),
		},
	}
}

// Panicked is a predicate to assert an expectation of the given kind failed
// because its predicate panicked
func Panicked(kind expect.Kind) OutcomeP {
	return AndP{
		preds: []OutcomeP{
			KindP{kind: kind},
			StatusP{status: expect.Failed},
			errorTypeP[*expect.PredicatePanicError]("PredicatePanicError"),
		},
	}
}
